package verify

// EventKind discriminates inbound events delivered to the state machine.
type EventKind string

const (
	EventContact EventKind = "contact"
	EventPhoto   EventKind = "photo"
)

// ContactPayload is a shared contact. OwnerID identifies whose contact
// it is, which may differ from the sender.
type ContactPayload struct {
	OwnerID int64
	Phone   string
}

// PhotoPayload references an uploaded photo. MediaRef is an opaque
// transport reference; the core never decodes image bytes.
type PhotoPayload struct {
	MediaRef string
}

// Event is one inbound update routed to Machine.Handle. Exactly one
// payload matching Kind is set; anything else counts as malformed input
// and resolves to a re-prompt of the current step.
type Event struct {
	Kind    EventKind
	Contact *ContactPayload
	Photo   *PhotoPayload
}
