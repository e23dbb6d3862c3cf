package verify

import "context"

// PromptKind enumerates the user-facing prompts the core can request.
// Rendering (text, keyboards) is the transport layer's concern.
type PromptKind string

const (
	// PromptPhone asks the user to share their own contact.
	PromptPhone PromptKind = "phone"
	// PromptReceipt asks for the purchase receipt photo.
	PromptReceipt PromptKind = "receipt"
	// PromptIdentity asks for the ID document photo.
	PromptIdentity PromptKind = "identity"
	// PromptProduct asks for the product photo.
	PromptProduct PromptKind = "product"
	// PromptSubmitted confirms the submission went to review.
	PromptSubmitted PromptKind = "submitted"
	// PromptSubmitFailed tells the user the handoff to review failed.
	PromptSubmitFailed PromptKind = "submit_failed"
	// PromptAlreadyPending refuses a restart while a decision is pending.
	PromptAlreadyPending PromptKind = "already_pending"
	// PromptCancelled acknowledges a cancelled submission.
	PromptCancelled PromptKind = "cancelled"
	// PromptNothingToCancel reports there was no in-progress submission.
	PromptNothingToCancel PromptKind = "nothing_to_cancel"
	// PromptIdle hints that /verify starts a submission.
	PromptIdle PromptKind = "idle"
)

// PromptOptions carries UI hints the core does not otherwise interpret.
type PromptOptions struct {
	RequestContact bool
	RemoveKeyboard bool
}

// Notifier is the narrow outbound boundary to the chat transport.
type Notifier interface {
	SendPrompt(ctx context.Context, userID int64, kind PromptKind, opts PromptOptions) error
	SendImage(ctx context.Context, recipientID int64, mediaRef, caption string) error
}

// stepPrompt maps a collection step to its prompt.
func stepPrompt(s Step) PromptKind {
	switch s {
	case StepPhone:
		return PromptPhone
	case StepReceipt:
		return PromptReceipt
	case StepIdentity:
		return PromptIdentity
	case StepProduct:
		return PromptProduct
	}
	return PromptIdle
}

// stepOptions returns the UI hints that accompany a step's prompt.
func stepOptions(s Step) PromptOptions {
	if s == StepPhone {
		return PromptOptions{RequestContact: true}
	}
	return PromptOptions{RemoveKeyboard: true}
}
