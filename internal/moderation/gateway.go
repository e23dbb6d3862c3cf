package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/verifybot/core/logger"
	"github.com/m3rciful/verifybot/internal/verify"
)

// Summary is the structured profile digest shown to the moderator.
type Summary struct {
	TargetID    int64
	DisplayName string
	Username    string
	Phone       string
}

// AckKind enumerates acknowledgements addressed back to the moderator.
type AckKind string

const (
	AckResolved AckKind = "resolved"
	AckNotFound AckKind = "not_found"
	AckUsage    AckKind = "usage"
)

// Ack is a typed acknowledgement; rendering is the transport's concern.
type Ack struct {
	Kind     AckKind
	Decision Decision
	TargetID int64
}

// Notifier delivers moderation traffic through the chat transport.
type Notifier interface {
	SendSummary(ctx context.Context, moderatorID int64, s Summary) error
	SendEvidence(ctx context.Context, moderatorID int64, kind verify.EvidenceKind, mediaRef string) error
	SendOutcome(ctx context.Context, userID int64, decision Decision) error
	SendAck(ctx context.Context, moderatorID int64, ack Ack) error
}

// AuditRecorder persists terminal decisions. A nil recorder disables it.
type AuditRecorder interface {
	RecordDecision(ctx context.Context, rec *verify.Record, decision Decision, moderatorID int64) error
}

// Gateway is the single resolution point between completed submissions
// and the one trusted moderator identity.
type Gateway struct {
	moderatorID int64
	store       verify.Store
	notifier    Notifier
	audit       AuditRecorder
	now         func() time.Time
}

// NewGateway wires the moderation gateway.
func NewGateway(moderatorID int64, store verify.Store, notifier Notifier, audit AuditRecorder) *Gateway {
	return &Gateway{
		moderatorID: moderatorID,
		store:       store,
		notifier:    notifier,
		audit:       audit,
		now:         time.Now,
	}
}

// Enqueue packages a completed submission for the moderator: one profile
// summary, the evidence photos in fixed order, then the decision
// directive rendered by the transport. A delivery failure is returned to
// the caller; swallowing it would orphan the pending record.
func (g *Gateway) Enqueue(ctx context.Context, rec *verify.Record) error {
	summary := Summary{
		TargetID:    rec.UserID,
		DisplayName: rec.DisplayName,
		Username:    rec.Username,
		Phone:       rec.Phone,
	}
	if err := g.notifier.SendSummary(ctx, g.moderatorID, summary); err != nil {
		return fmt.Errorf("moderator summary: %w", err)
	}
	for _, kind := range verify.EvidenceOrder {
		ref, ok := rec.Evidence[kind]
		if !ok {
			continue
		}
		if err := g.notifier.SendEvidence(ctx, g.moderatorID, kind, ref); err != nil {
			return fmt.Errorf("moderator evidence %s: %w", kind, err)
		}
	}
	logger.SVCModeration.LogAttrs(ctx, slog.LevelInfo, "enqueued",
		slog.String("event", "enqueued"),
		slog.String("status", "ok"),
		slog.Int64("target_id", rec.UserID),
		slog.Int("evidence_count", len(rec.Evidence)),
	)
	return nil
}

// Resolve applies a moderator decision to the targeted submission.
// Authorization is a pure identity-equality check; authenticating the
// moderator identity itself is the transport's job.
func (g *Gateway) Resolve(ctx context.Context, moderatorID int64, decision Decision, targetID int64) error {
	if moderatorID != g.moderatorID {
		logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "resolve.unauthorized",
			slog.String("event", "resolve.unauthorized"),
			slog.Int64("moderator_id", moderatorID),
			slog.Int64("target_id", targetID),
		)
		return ErrUnauthorized
	}

	var resolved *verify.Record
	err := g.store.Update(targetID, func(rec *verify.Record) error {
		if rec.Status != verify.StatusPending {
			return ErrNotFound
		}
		switch decision {
		case DecisionApprove:
			rec.Status = verify.StatusApproved
		case DecisionReject:
			rec.Status = verify.StatusRejected
		default:
			return fmt.Errorf("moderation: unknown decision %q", decision)
		}
		rec.UpdatedAt = g.now()
		resolved = rec.Clone()
		return nil
	})
	if err != nil {
		if err == ErrNotFound {
			logger.SVCModeration.LogAttrs(ctx, slog.LevelInfo, "resolve.not_found",
				slog.String("event", "resolve.not_found"),
				slog.String("status", "skip"),
				slog.Int64("target_id", targetID),
			)
			if ackErr := g.notifier.SendAck(ctx, g.moderatorID, Ack{Kind: AckNotFound, Decision: decision, TargetID: targetID}); ackErr != nil {
				return fmt.Errorf("moderator ack: %w", ackErr)
			}
		}
		return err
	}

	if g.audit != nil {
		if auditErr := g.audit.RecordDecision(ctx, resolved, decision, moderatorID); auditErr != nil {
			// The decision already happened; losing the audit row is
			// logged loudly but must not fail the resolution.
			logger.Audit.LogAttrs(ctx, slog.LevelError, "record.failed",
				slog.String("event", "record.failed"),
				slog.String("status", "fail"),
				slog.Int64("target_id", targetID),
				slog.String("err", auditErr.Error()),
			)
		}
	}

	logger.SVCModeration.LogAttrs(ctx, slog.LevelInfo, "resolved",
		slog.String("event", "resolved"),
		slog.String("status", "ok"),
		slog.String("decision", string(decision)),
		slog.Int64("target_id", targetID),
		slog.Int64("moderator_id", moderatorID),
	)

	if err := g.notifier.SendOutcome(ctx, targetID, decision); err != nil {
		return fmt.Errorf("outcome notification: %w", err)
	}
	if err := g.notifier.SendAck(ctx, g.moderatorID, Ack{Kind: AckResolved, Decision: decision, TargetID: targetID}); err != nil {
		return fmt.Errorf("moderator ack: %w", err)
	}
	return nil
}

// PendingSubmissions lists submissions awaiting a decision, oldest first.
func (g *Gateway) PendingSubmissions() []Summary {
	records := g.store.Pending()
	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		out = append(out, Summary{
			TargetID:    rec.UserID,
			DisplayName: rec.DisplayName,
			Username:    rec.Username,
			Phone:       rec.Phone,
		})
	}
	return out
}

// ModeratorID exposes the configured reviewer identity for route gating.
func (g *Gateway) ModeratorID() int64 {
	return g.moderatorID
}
