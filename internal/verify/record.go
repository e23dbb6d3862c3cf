package verify

import "time"

// Status tracks where a submission is in its lifecycle.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// Step identifies the collection step a submission is waiting on.
// Meaningful only while the record is in progress.
type Step string

const (
	StepPhone    Step = "phone"
	StepReceipt  Step = "receipt"
	StepIdentity Step = "identity"
	StepProduct  Step = "product"
)

// EvidenceKind names one of the required media categories.
type EvidenceKind string

const (
	EvidenceReceipt  EvidenceKind = "receipt"
	EvidenceIdentity EvidenceKind = "identity"
	EvidenceProduct  EvidenceKind = "product"
)

// EvidenceOrder fixes the presentation order of evidence for the moderator.
var EvidenceOrder = []EvidenceKind{EvidenceReceipt, EvidenceIdentity, EvidenceProduct}

// Profile carries the informational identity attached to a submission.
type Profile struct {
	DisplayName string
	Username    string
}

// Record is one user's submission: phone plus three evidence photos,
// keyed by Telegram user ID. Records survive terminal decisions so that
// status queries and resubmission keep working.
type Record struct {
	UserID      int64
	DisplayName string
	Username    string
	Phone       string
	Evidence    map[EvidenceKind]string
	Status      Status
	Step        Step
	StartedAt   time.Time
	UpdatedAt   time.Time
}

// NewRecord returns a fresh, not-started record for the given user.
func NewRecord(userID int64) *Record {
	return &Record{
		UserID:   userID,
		Evidence: make(map[EvidenceKind]string),
		Status:   StatusNotStarted,
	}
}

// Reset starts a new submission attempt, clearing phone and any
// previously collected evidence.
func (r *Record) Reset(profile Profile, now time.Time) {
	r.DisplayName = profile.DisplayName
	r.Username = profile.Username
	r.Phone = ""
	r.Evidence = make(map[EvidenceKind]string)
	r.Status = StatusInProgress
	r.Step = StepPhone
	r.StartedAt = now
	r.UpdatedAt = now
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Evidence = make(map[EvidenceKind]string, len(r.Evidence))
	for k, v := range r.Evidence {
		out.Evidence[k] = v
	}
	return &out
}

// Terminal reports whether the record carries a moderator decision.
func (r *Record) Terminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

// nextStep returns the step after s, or false after the last one.
func nextStep(s Step) (Step, bool) {
	switch s {
	case StepPhone:
		return StepReceipt, true
	case StepReceipt:
		return StepIdentity, true
	case StepIdentity:
		return StepProduct, true
	}
	return "", false
}

// evidenceForStep maps a photo collection step to its evidence kind.
func evidenceForStep(s Step) (EvidenceKind, bool) {
	switch s {
	case StepReceipt:
		return EvidenceReceipt, true
	case StepIdentity:
		return EvidenceIdentity, true
	case StepProduct:
		return EvidenceProduct, true
	}
	return "", false
}
