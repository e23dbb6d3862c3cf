package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/verifybot/core/logger"
	"github.com/m3rciful/verifybot/core/telegram/callbacks"
	"github.com/m3rciful/verifybot/core/telegram/helpers"
	"github.com/m3rciful/verifybot/internal/moderation"
	"github.com/m3rciful/verifybot/internal/verify"
)

// wrap adapts a context-aware handler to telebot and emits the per-handler
// summary line.
func (a *App) wrap(name string, fn func(ctx context.Context, c tele.Context) error) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := helpers.WithHandler(c, name)
		start := time.Now()
		err := fn(ctx, c)

		level := slog.LevelInfo
		attrs := []slog.Attr{
			slog.String("event", "handler.done"),
			slog.String("handler", name),
			slog.String("status", logger.Status(err)),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		}
		if err != nil {
			level = slog.LevelError
			attrs = append(attrs, slog.String("err", err.Error()))
		}
		logger.TG.LogAttrs(ctx, level, "handler.done", attrs...)
		return err
	}
}

func profileOf(user *tele.User) verify.Profile {
	if user == nil {
		return verify.Profile{}
	}
	name := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	return verify.Profile{DisplayName: name, Username: user.Username}
}

func (a *App) onStart(_ context.Context, c tele.Context) error {
	return c.Send(welcomeText)
}

func (a *App) onVerify(ctx context.Context, c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return a.machine.Start(ctx, sender.ID, profileOf(sender))
}

func (a *App) onCancel(ctx context.Context, c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return a.machine.Cancel(ctx, sender.ID)
}

func (a *App) onStatus(_ context.Context, c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return c.Send(statusText(a.machine.StatusOf(sender.ID)))
}

func (a *App) onPending(_ context.Context, c tele.Context) error {
	pending := a.gateway.PendingSubmissions()
	if len(pending) == 0 {
		return c.Send("No pending submissions.")
	}
	var b strings.Builder
	b.WriteString("⏳ Pending submissions:\n")
	for _, s := range pending {
		name := s.DisplayName
		if name == "" {
			name = "(no name)"
		}
		fmt.Fprintf(&b, "• %s: /approve_%d or /reject_%d\n", name, s.TargetID, s.TargetID)
	}
	return c.Send(b.String())
}

func (a *App) onContact(ctx context.Context, c tele.Context) error {
	sender := c.Sender()
	msg := c.Message()
	if sender == nil || msg == nil || msg.Contact == nil {
		return nil
	}
	ev := verify.Event{
		Kind: verify.EventContact,
		Contact: &verify.ContactPayload{
			OwnerID: msg.Contact.UserID,
			Phone:   msg.Contact.PhoneNumber,
		},
	}
	return a.machine.Handle(ctx, sender.ID, ev)
}

func (a *App) onPhoto(ctx context.Context, c tele.Context) error {
	sender := c.Sender()
	msg := c.Message()
	if sender == nil || msg == nil || msg.Photo == nil {
		return nil
	}
	// telebot keeps only the largest size of the photo.
	ev := verify.Event{
		Kind:  verify.EventPhoto,
		Photo: &verify.PhotoPayload{MediaRef: msg.Photo.FileID},
	}
	return a.machine.Handle(ctx, sender.ID, ev)
}

// onText receives everything that is not a registered command: moderator
// decision commands and stray user text alike.
func (a *App) onText(ctx context.Context, c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	cmd, err := moderation.ParseDecision(c.Text())
	switch {
	case err == nil:
		err = a.gateway.Resolve(ctx, sender.ID, cmd.Action, cmd.TargetID)
		if errors.Is(err, moderation.ErrUnauthorized) || errors.Is(err, moderation.ErrNotFound) {
			return nil
		}
		return err
	case errors.Is(err, moderation.ErrMalformedCommand) && sender.ID == a.gateway.ModeratorID():
		return a.notifier.SendAck(ctx, sender.ID, moderation.Ack{Kind: moderation.AckUsage})
	}

	// Stray text never matches a collection step, so the machine answers
	// with the right hint for wherever the user currently is.
	return a.machine.Handle(ctx, sender.ID, verify.Event{})
}

func (a *App) onCallback(_ context.Context, c tele.Context) error {
	key := callbacks.CallbackKey(c)
	if handler, ok := a.registry.GetCallback(key); ok {
		return handler(c)
	}
	return a.registry.CallbackNotFound()(c)
}
