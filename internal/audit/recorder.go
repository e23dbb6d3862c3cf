package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/verifybot/core/logger"
	"github.com/m3rciful/verifybot/internal/moderation"
	"github.com/m3rciful/verifybot/internal/verify"
)

// Recorder persists one row per terminal moderator decision. In-progress
// state stays in memory on purpose; only decisions need to survive
// restarts.
type Recorder struct {
	db *sqlx.DB
}

// NewRecorder returns a Recorder backed by the given database.
func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

type decisionRow struct {
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Username    string    `db:"username"`
	Phone       string    `db:"phone"`
	ReceiptRef  string    `db:"receipt_ref"`
	IdentityRef string    `db:"identity_ref"`
	ProductRef  string    `db:"product_ref"`
	Decision    string    `db:"decision"`
	ModeratorID int64     `db:"moderator_id"`
	SubmittedAt time.Time `db:"submitted_at"`
	DecidedAt   time.Time `db:"decided_at"`
}

const insertDecision = `
INSERT INTO submission_decisions
	(user_id, display_name, username, phone, receipt_ref, identity_ref, product_ref, decision, moderator_id, submitted_at, decided_at)
VALUES
	(:user_id, :display_name, :username, :phone, :receipt_ref, :identity_ref, :product_ref, :decision, :moderator_id, :submitted_at, :decided_at)`

// RecordDecision writes the audit row for a resolved submission.
func (r *Recorder) RecordDecision(ctx context.Context, rec *verify.Record, decision moderation.Decision, moderatorID int64) error {
	if r == nil || r.db == nil {
		return nil
	}

	row := decisionRow{
		UserID:      rec.UserID,
		DisplayName: rec.DisplayName,
		Username:    rec.Username,
		Phone:       rec.Phone,
		ReceiptRef:  rec.Evidence[verify.EvidenceReceipt],
		IdentityRef: rec.Evidence[verify.EvidenceIdentity],
		ProductRef:  rec.Evidence[verify.EvidenceProduct],
		Decision:    string(decision),
		ModeratorID: moderatorID,
		SubmittedAt: rec.StartedAt,
		DecidedAt:   rec.UpdatedAt,
	}

	start := time.Now()
	if _, err := r.db.NamedExecContext(ctx, insertDecision, row); err != nil {
		return fmt.Errorf("insert submission decision: %w", err)
	}

	logger.Audit.LogAttrs(ctx, slog.LevelDebug, "recorded",
		slog.String("event", "recorded"),
		slog.String("status", "ok"),
		slog.Int64("target_id", rec.UserID),
		slog.String("decision", string(decision)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
