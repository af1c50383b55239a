// internal/claims/orchestrator.go
package claims

import (
	"context"
	"errors"
	"sync"
	"time"

	clienterrors "claims-client/internal/common/errors"
	"claims-client/internal/common/logger"
	"claims-client/internal/common/metrics"
	"claims-client/internal/common/observability"
	"claims-client/internal/models"
)

// State is the orchestrator's position in the claim flow.
type State string

const (
	StateForm        State = "form"
	StateSubmitting  State = "submitting"
	StateDecision    State = "decision"
	StateExplanation State = "explanation"
)

// ErrSubmissionInFlight is returned when Submit is called while an
// earlier submission has not yet resolved.
var ErrSubmissionInFlight = errors.New("a claim submission is already in flight")

// Submitter is the backend surface the orchestrator needs.
// Satisfied by backend.Client.
type Submitter interface {
	SubmitClaim(ctx context.Context, claim *models.ClaimRequest) (*models.ClaimDecision, error)
	FetchExplanation(ctx context.Context, claimID string) (*models.DetailedExplanation, error)
}

// DecisionSink receives each decision after it is accepted. Sink
// failures are logged and never affect the flow.
type DecisionSink interface {
	RecordDecision(ctx context.Context, decision *models.ClaimDecision) error
}

// Orchestrator drives a single claim through validation, submission
// under a client-side deadline, and decision presentation. One
// submission may be in flight at a time; a failed attempt restores the
// state it started from.
type Orchestrator struct {
	backend       Submitter
	logger        logger.Logger
	obs           *observability.Observability
	submitTimeout time.Duration
	sinks         []DecisionSink

	mu                 sync.Mutex
	state              State
	decision           *models.ClaimDecision
	explanation        *models.DetailedExplanation
	showingExplanation bool
}

// New creates an Orchestrator in the form state. obs and sinks may be
// nil or empty.
func New(backend Submitter, submitTimeout time.Duration, obs *observability.Observability, log logger.Logger, sinks ...DecisionSink) *Orchestrator {
	return &Orchestrator{
		backend:       backend,
		logger:        log,
		obs:           obs,
		submitTimeout: submitTimeout,
		sinks:         sinks,
		state:         StateForm,
	}
}

// Submit validates and sends one claim. Validation failures return
// before any network activity. The submission runs under the
// configured deadline; crossing it yields a timeout error distinct
// from transport failures, and in either case the pre-submit state is
// restored. On success the decision replaces any earlier one.
func (o *Orchestrator) Submit(ctx context.Context, claim *models.ClaimRequest) (*models.ClaimDecision, error) {
	if claim == nil {
		metrics.ClaimSubmissions.WithLabelValues("validation_error").Inc()
		return nil, clienterrors.NewValidationError("claim request is required")
	}
	if err := ValidateClaim(claim); err != nil {
		metrics.ClaimSubmissions.WithLabelValues("validation_error").Inc()
		o.logger.Warn("Claim rejected by validation", map[string]interface{}{
			"policy_id": claim.PolicyID,
			"error":     err.Error(),
		})
		return nil, err
	}

	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	prevState := o.state
	o.state = StateSubmitting
	o.mu.Unlock()

	var accepted bool
	defer func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if accepted {
			o.state = StateDecision
		} else {
			o.state = prevState
		}
	}()

	submitCtx, cancel := context.WithTimeout(ctx, o.submitTimeout)
	defer cancel()

	start := time.Now()
	decision, err := o.backend.SubmitClaim(submitCtx, claim)
	elapsed := time.Since(start)

	if err != nil {
		outcome := "network_error"
		if errors.Is(submitCtx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
			err = clienterrors.NewTimeoutError("submit claim", err)
		}
		metrics.ClaimSubmissions.WithLabelValues(outcome).Inc()
		metrics.ClaimSubmitDuration.Observe(elapsed.Seconds())
		if o.obs != nil {
			o.obs.RecordClaimSubmitted(ctx, outcome)
			o.obs.RecordClaimDuration(ctx, elapsed, outcome)
		}
		o.logger.Error("Claim submission failed", map[string]interface{}{
			"policy_id": claim.PolicyID,
			"outcome":   outcome,
			"error":     err.Error(),
		})
		return nil, err
	}

	accepted = true
	outcome := string(decision.Decision)
	metrics.ClaimSubmissions.WithLabelValues(outcome).Inc()
	metrics.ClaimSubmitDuration.Observe(elapsed.Seconds())
	if o.obs != nil {
		o.obs.RecordClaimSubmitted(ctx, outcome)
		o.obs.RecordClaimDuration(ctx, elapsed, outcome)
	}

	o.mu.Lock()
	o.decision = decision
	o.explanation = nil
	o.showingExplanation = false
	o.mu.Unlock()

	o.notifySinks(ctx, decision)

	o.logger.Info("Claim decided", map[string]interface{}{
		"claim_id": decision.ClaimID,
		"decision": outcome,
	})
	return decision, nil
}

// FetchExplanation retrieves the detailed reasoning for the current
// decision and switches presentation to it. A failure leaves the
// decision view untouched.
func (o *Orchestrator) FetchExplanation(ctx context.Context) (*models.DetailedExplanation, error) {
	o.mu.Lock()
	decision := o.decision
	o.mu.Unlock()

	if decision == nil {
		return nil, clienterrors.NewValidationError("no decision to explain")
	}

	explanation, err := o.backend.FetchExplanation(ctx, decision.ClaimID)
	if err != nil {
		o.logger.Warn("Explanation fetch failed", map[string]interface{}{
			"claim_id": decision.ClaimID,
			"error":    err.Error(),
		})
		return nil, err
	}

	o.mu.Lock()
	o.explanation = explanation
	o.showingExplanation = true
	o.mu.Unlock()

	return explanation, nil
}

// Dismiss returns from the explanation view to the decision view. A
// no-op in any other state.
func (o *Orchestrator) Dismiss() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.showingExplanation = false
}

// Reset discards the current decision and returns to the form, ready
// for a new claim.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSubmitting {
		return
	}
	o.state = StateForm
	o.decision = nil
	o.explanation = nil
	o.showingExplanation = false
}

// State returns the current flow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateDecision && o.showingExplanation {
		return StateExplanation
	}
	return o.state
}

// Decision returns the most recent decision, nil before the first
// successful submission.
func (o *Orchestrator) Decision() *models.ClaimDecision {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.decision
}

// Explanation returns the fetched detailed explanation, if any.
func (o *Orchestrator) Explanation() *models.DetailedExplanation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.explanation
}

func (o *Orchestrator) notifySinks(ctx context.Context, decision *models.ClaimDecision) {
	for _, sink := range o.sinks {
		if err := sink.RecordDecision(ctx, decision); err != nil {
			o.logger.Warn("Decision sink failed", map[string]interface{}{
				"claim_id": decision.ClaimID,
				"error":    err.Error(),
			})
		}
	}
}
