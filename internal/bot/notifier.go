package bot

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/verifybot/core/telegram/keyboard"
	"github.com/m3rciful/verifybot/core/telegram/sender"
	"github.com/m3rciful/verifybot/internal/moderation"
	"github.com/m3rciful/verifybot/internal/verify"
)

// Callback uniques for the moderator's inline decision buttons.
const (
	callbackApprove = "mod_approve"
	callbackReject  = "mod_reject"
)

// Notifier renders domain notifications into Telegram messages and hands
// them to the outbound dispatcher. Delivery retries and error logging are
// the dispatcher's job; an error here means the message never left the
// queue at all.
type Notifier struct {
	bot        atomic.Pointer[tele.Bot]
	dispatcher *sender.Dispatcher
}

// NewNotifier builds a notifier around the outbound dispatcher. The bot
// handle is attached later via Bind, once the Telegram session exists.
func NewNotifier(d *sender.Dispatcher) *Notifier {
	return &Notifier{dispatcher: d}
}

// Bind attaches the live bot. Until then every send fails.
func (n *Notifier) Bind(b *tele.Bot) {
	n.bot.Store(b)
}

func (n *Notifier) enqueue(ctx context.Context, action, endpoint string, recipientID int64, what interface{}, opts ...interface{}) error {
	b := n.bot.Load()
	if b == nil {
		return errors.New("bot: notifier not bound to a session")
	}
	to := &tele.User{ID: recipientID}
	return n.dispatcher.Enqueue(ctx, action, endpoint, func() error {
		_, err := b.Send(to, what, opts...)
		return err
	})
}

// SendPrompt implements verify.Notifier.
func (n *Notifier) SendPrompt(ctx context.Context, userID int64, kind verify.PromptKind, opts verify.PromptOptions) error {
	text, ok := promptTexts[kind]
	if !ok {
		text = promptTexts[verify.PromptIdle]
	}
	var extra []interface{}
	switch {
	case opts.RequestContact:
		extra = append(extra, keyboard.ContactRequest("📱 Share Phone Number"))
	case opts.RemoveKeyboard:
		extra = append(extra, keyboard.RemoveKeyboard())
	}
	return n.enqueue(ctx, "prompt."+string(kind), "sendMessage", userID, text, extra...)
}

// SendImage implements verify.Notifier.
func (n *Notifier) SendImage(ctx context.Context, recipientID int64, mediaRef, caption string) error {
	photo := &tele.Photo{File: tele.File{FileID: mediaRef}, Caption: caption}
	return n.enqueue(ctx, "image", "sendPhoto", recipientID, photo)
}

// SendSummary implements moderation.Notifier. The summary message carries
// inline decision buttons whose payload is the target user ID.
func (n *Notifier) SendSummary(ctx context.Context, moderatorID int64, s moderation.Summary) error {
	target := strconv.FormatInt(s.TargetID, 10)
	markup := keyboard.InlineButtonsRow(
		keyboard.InlineBtn{Text: "✅ Approve", Unique: callbackApprove, Data: target},
		keyboard.InlineBtn{Text: "🚫 Reject", Unique: callbackReject, Data: target},
	)
	return n.enqueue(ctx, "moderation.summary", "sendMessage", moderatorID, summaryText(s), markup)
}

// SendEvidence implements moderation.Notifier.
func (n *Notifier) SendEvidence(ctx context.Context, moderatorID int64, kind verify.EvidenceKind, mediaRef string) error {
	photo := &tele.Photo{File: tele.File{FileID: mediaRef}, Caption: evidenceCaptions[kind]}
	return n.enqueue(ctx, "moderation.evidence."+string(kind), "sendPhoto", moderatorID, photo)
}

// SendOutcome implements moderation.Notifier.
func (n *Notifier) SendOutcome(ctx context.Context, userID int64, decision moderation.Decision) error {
	return n.enqueue(ctx, "moderation.outcome", "sendMessage", userID, outcomeText(decision), keyboard.RemoveKeyboard())
}

// SendAck implements moderation.Notifier.
func (n *Notifier) SendAck(ctx context.Context, moderatorID int64, ack moderation.Ack) error {
	return n.enqueue(ctx, "moderation.ack."+string(ack.Kind), "sendMessage", moderatorID, ackText(ack))
}
