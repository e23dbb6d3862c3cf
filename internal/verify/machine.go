package verify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/verifybot/core/logger"
)

// Gateway receives completed submissions for moderation.
type Gateway interface {
	Enqueue(ctx context.Context, rec *Record) error
}

// Machine drives a single user's progression through the ordered
// collection steps. All transitions run under the store's per-user lock,
// so concurrent events for one user apply in receipt order.
type Machine struct {
	store    Store
	notifier Notifier
	gateway  Gateway
	now      func() time.Time
}

// NewMachine wires the state machine with its collaborators.
func NewMachine(store Store, notifier Notifier, gateway Gateway) *Machine {
	return &Machine{
		store:    store,
		notifier: notifier,
		gateway:  gateway,
		now:      time.Now,
	}
}

// Start begins (or restarts) a submission. A pending submission is not
// re-enterable: the user gets an informational reply and nothing changes.
func (m *Machine) Start(ctx context.Context, userID int64, profile Profile) error {
	var prompt PromptKind
	var opts PromptOptions

	err := m.store.Update(userID, func(rec *Record) error {
		if rec.Status == StatusPending {
			prompt = PromptAlreadyPending
			logger.SVCVerify.LogAttrs(ctx, slog.LevelInfo, "start.refused",
				slog.String("event", "start.refused"),
				slog.Int64("user_id", userID),
				slog.String("submission_status", string(rec.Status)),
			)
			return nil
		}
		rec.Reset(profile, m.now())
		prompt = PromptPhone
		opts = PromptOptions{RequestContact: true}
		logger.SVCVerify.LogAttrs(ctx, slog.LevelInfo, "start",
			slog.String("event", "start"),
			slog.String("status", "ok"),
			slog.Int64("user_id", userID),
			slog.String("step", string(rec.Step)),
		)
		return nil
	})
	if err != nil {
		return err
	}
	return m.notifier.SendPrompt(ctx, userID, prompt, opts)
}

// Handle applies one inbound event against the user's current step.
// Events that do not match the expected kind leave the record untouched
// and re-issue the current step's prompt, however often they arrive.
func (m *Machine) Handle(ctx context.Context, userID int64, ev Event) error {
	var (
		prompt   PromptKind
		opts     PromptOptions
		finished *Record
	)

	err := m.store.Update(userID, func(rec *Record) error {
		if rec.Status != StatusInProgress {
			if rec.Status == StatusPending {
				prompt = PromptAlreadyPending
			} else {
				prompt = PromptIdle
			}
			return nil
		}

		if rec.Step == StepPhone {
			if ev.Kind != EventContact || ev.Contact == nil || ev.Contact.Phone == "" {
				prompt, opts = stepPrompt(rec.Step), stepOptions(rec.Step)
				return nil
			}
			// Self-share enforcement: a third party's contact proves nothing.
			if ev.Contact.OwnerID != userID {
				logger.SVCVerify.LogAttrs(ctx, slog.LevelWarn, "contact.rejected",
					slog.String("event", "contact.rejected"),
					slog.Int64("user_id", userID),
					slog.Int64("owner_id", ev.Contact.OwnerID),
				)
				prompt, opts = stepPrompt(rec.Step), stepOptions(rec.Step)
				return nil
			}
			rec.Phone = ev.Contact.Phone
			rec.Step = StepReceipt
			rec.UpdatedAt = m.now()
			prompt, opts = stepPrompt(rec.Step), stepOptions(rec.Step)
			logger.SVCVerify.LogAttrs(ctx, slog.LevelInfo, "step.advanced",
				slog.String("event", "step.advanced"),
				slog.String("status", "ok"),
				slog.Int64("user_id", userID),
				slog.String("step", string(rec.Step)),
				slog.Bool("phone_set", true),
			)
			return nil
		}

		kind, ok := evidenceForStep(rec.Step)
		if !ok {
			// Unknown step means a corrupted record; restart collection.
			rec.Step = StepPhone
			prompt, opts = stepPrompt(rec.Step), stepOptions(rec.Step)
			return nil
		}
		if ev.Kind != EventPhoto || ev.Photo == nil || ev.Photo.MediaRef == "" {
			prompt, opts = stepPrompt(rec.Step), stepOptions(rec.Step)
			return nil
		}

		rec.Evidence[kind] = ev.Photo.MediaRef
		rec.UpdatedAt = m.now()

		if next, more := nextStep(rec.Step); more {
			rec.Step = next
			prompt, opts = stepPrompt(rec.Step), stepOptions(rec.Step)
			logger.SVCVerify.LogAttrs(ctx, slog.LevelInfo, "step.advanced",
				slog.String("event", "step.advanced"),
				slog.String("status", "ok"),
				slog.Int64("user_id", userID),
				slog.String("step", string(rec.Step)),
				slog.String("evidence_kind", string(kind)),
				slog.Int("evidence_count", len(rec.Evidence)),
			)
			return nil
		}

		rec.Status = StatusPending
		rec.Step = ""
		prompt = PromptSubmitted
		opts = PromptOptions{RemoveKeyboard: true}
		finished = rec.Clone()
		logger.SVCVerify.LogAttrs(ctx, slog.LevelInfo, "submission.complete",
			slog.String("event", "submission.complete"),
			slog.String("status", "ok"),
			slog.Int64("user_id", userID),
			slog.Int("evidence_count", len(rec.Evidence)),
		)
		return nil
	})
	if err != nil {
		return err
	}

	if err := m.notifier.SendPrompt(ctx, userID, prompt, opts); err != nil {
		return err
	}

	// Handoff happens synchronously: a lost enqueue would orphan the
	// pending record with nobody aware of it.
	if finished != nil {
		if err := m.gateway.Enqueue(ctx, finished); err != nil {
			logger.SVCVerify.LogAttrs(ctx, slog.LevelError, "enqueue.failed",
				slog.String("event", "enqueue.failed"),
				slog.String("status", "fail"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
			_ = m.notifier.SendPrompt(ctx, userID, PromptSubmitFailed, PromptOptions{})
			return fmt.Errorf("moderation handoff for user %d: %w", userID, err)
		}
	}
	return nil
}

// Cancel aborts an in-progress submission. Cancelling a pending or
// decided record is a no-op reported with a status message.
func (m *Machine) Cancel(ctx context.Context, userID int64) error {
	prompt := PromptNothingToCancel

	err := m.store.Update(userID, func(rec *Record) error {
		if rec.Status != StatusInProgress {
			return nil
		}
		rec.Status = StatusNotStarted
		rec.Step = ""
		rec.Phone = ""
		rec.Evidence = make(map[EvidenceKind]string)
		rec.UpdatedAt = m.now()
		prompt = PromptCancelled
		logger.SVCVerify.LogAttrs(ctx, slog.LevelInfo, "cancelled",
			slog.String("event", "cancelled"),
			slog.String("status", "cancelled"),
			slog.Int64("user_id", userID),
		)
		return nil
	})
	if err != nil {
		return err
	}
	return m.notifier.SendPrompt(ctx, userID, prompt, PromptOptions{RemoveKeyboard: true})
}

// StatusOf returns a snapshot for read-only status queries, or nil when
// the user never started a submission.
func (m *Machine) StatusOf(userID int64) *Record {
	return m.store.Get(userID)
}
