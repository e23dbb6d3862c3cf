package bot

import (
	"fmt"

	"github.com/m3rciful/verifybot/internal/moderation"
	"github.com/m3rciful/verifybot/internal/verify"
)

const welcomeText = "👋 Welcome!\n\n" +
	"To verify your purchase, I'll need:\n" +
	"1. 📱 Your phone number\n" +
	"2. 📄 Purchase receipt photo\n" +
	"3. 🆔 ID photo\n" +
	"4. 📦 Product photo\n\n" +
	"Send /verify to begin!"

var promptTexts = map[verify.PromptKind]string{
	verify.PromptPhone: "📱 Step 1/4: Phone Verification\n\n" +
		"Please share your phone number using the button below:",
	verify.PromptReceipt: "📄 Step 2/4: Purchase Receipt\n\n" +
		"Please send a photo of your purchase receipt or invoice:",
	verify.PromptIdentity: "🆔 Step 3/4: ID Verification\n\n" +
		"Please send a photo of your ID (Passport/Driver's License/National ID):",
	verify.PromptProduct: "📦 Step 4/4: Product Photo\n\n" +
		"Please send a photo of your actual product:",
	verify.PromptSubmitted: "✅ All done! Your verification was sent for review.\n" +
		"We'll notify you once it's decided.",
	verify.PromptSubmitFailed:    "⚠️ We couldn't hand your submission over for review. Please try again later.",
	verify.PromptAlreadyPending:  "⏳ Your verification is already under review. Please wait for the decision.",
	verify.PromptCancelled:       "❌ Verification cancelled. Send /verify to start again.",
	verify.PromptNothingToCancel: "Nothing to cancel. Send /verify to start verification.",
	verify.PromptIdle:            "Send /verify to start the verification process.",
}

var evidenceCaptions = map[verify.EvidenceKind]string{
	verify.EvidenceReceipt:  "📄 Receipt",
	verify.EvidenceIdentity: "🆔 ID Photo",
	verify.EvidenceProduct:  "📦 Product Photo",
}

var statusTexts = map[verify.Status]string{
	verify.StatusNotStarted: "You haven't started verification yet. Send /verify to begin.",
	verify.StatusInProgress: "Your verification is in progress. Follow the prompts, or /cancel to abort.",
	verify.StatusPending:    "⏳ Your verification is under review.",
	verify.StatusApproved:   "🎉 Your verification is APPROVED!",
	verify.StatusRejected:   "😞 Your verification was rejected. Send /verify to try again.",
}

func statusText(rec *verify.Record) string {
	if rec == nil {
		return statusTexts[verify.StatusNotStarted]
	}
	if text, ok := statusTexts[rec.Status]; ok {
		return text
	}
	return statusTexts[verify.StatusNotStarted]
}

func summaryText(s moderation.Summary) string {
	name := s.DisplayName
	if name == "" {
		name = "(no name)"
	}
	username := "(none)"
	if s.Username != "" {
		username = "@" + s.Username
	}
	return fmt.Sprintf(
		"📦 NEW VERIFICATION REQUEST\n\n"+
			"User: %s\n"+
			"Username: %s\n"+
			"Phone: %s\n"+
			"ID: %d\n\n"+
			"Decide with /approve_%d or /reject_%d, or use the buttons below.",
		name, username, s.Phone, s.TargetID, s.TargetID, s.TargetID,
	)
}

func outcomeText(decision moderation.Decision) string {
	if decision == moderation.DecisionApprove {
		return "🎉 Your verification is APPROVED!"
	}
	return "😞 Your verification was rejected. Send /verify to try again."
}

func ackText(ack moderation.Ack) string {
	switch ack.Kind {
	case moderation.AckResolved:
		if ack.Decision == moderation.DecisionApprove {
			return fmt.Sprintf("✅ User %d approved!", ack.TargetID)
		}
		return fmt.Sprintf("🚫 User %d rejected.", ack.TargetID)
	case moderation.AckNotFound:
		return fmt.Sprintf("User %d not found or already resolved.", ack.TargetID)
	default:
		return "Usage: /approve_<user_id> or /reject_<user_id>"
	}
}
