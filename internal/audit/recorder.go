// internal/audit/recorder.go
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"claims-client/internal/common/logger"
	"claims-client/internal/models"
	"claims-client/internal/tracker"
)

const insertDecisionQuery = `
	INSERT INTO claim_decisions (
		claim_id, policy_id, treatment_type, claimed_amount,
		approved_amount, decision, reason, confidence_score, decided_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const insertJobEventQuery = `
	INSERT INTO document_job_events (
		doc_id, filename, status, error_detail, occurred_at
	) VALUES ($1, $2, $3, $4, $5)`

// Recorder writes an append-only audit trail of claim decisions and
// document job outcomes to Postgres. It is an optional side channel:
// callers log its failures and move on.
type Recorder struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRecorder(db *sql.DB, log logger.Logger) *Recorder {
	return &Recorder{db: db, logger: log}
}

// RecordDecision appends one adjudicated claim to the audit trail.
// Satisfies the orchestrator's decision sink.
func (r *Recorder) RecordDecision(ctx context.Context, decision *models.ClaimDecision) error {
	_, err := r.db.ExecContext(ctx, insertDecisionQuery,
		decision.ClaimID,
		decision.PolicyID,
		string(decision.TreatmentType),
		decision.ClaimedAmount,
		decision.ApprovedAmount,
		string(decision.Decision),
		decision.Explanation.Reason,
		decision.Explanation.ConfidenceScore,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record decision %s: %w", decision.ClaimID, err)
	}

	r.logger.Debug("Decision recorded in audit trail", map[string]interface{}{
		"claim_id": decision.ClaimID,
	})
	return nil
}

// RecordJobEvent appends a terminal document job outcome.
func (r *Recorder) RecordJobEvent(ctx context.Context, event tracker.TerminalEvent) error {
	_, err := r.db.ExecContext(ctx, insertJobEventQuery,
		event.JobID,
		event.Filename,
		string(event.Status),
		event.Error,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record job event for %s: %w", event.JobID, err)
	}
	return nil
}
