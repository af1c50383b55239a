// internal/claims/orchestrator_test.go
package claims

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clienterrors "claims-client/internal/common/errors"
	"claims-client/internal/common/logger"
	"claims-client/internal/models"
)

type fakeBackend struct {
	mu          sync.Mutex
	submitCalls int
	submitFn    func(ctx context.Context, claim *models.ClaimRequest) (*models.ClaimDecision, error)
	explainFn   func(ctx context.Context, claimID string) (*models.DetailedExplanation, error)
}

func (f *fakeBackend) SubmitClaim(ctx context.Context, claim *models.ClaimRequest) (*models.ClaimDecision, error) {
	f.mu.Lock()
	f.submitCalls++
	fn := f.submitFn
	f.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("no submit handler")
	}
	return fn(ctx, claim)
}

func (f *fakeBackend) FetchExplanation(ctx context.Context, claimID string) (*models.DetailedExplanation, error) {
	f.mu.Lock()
	fn := f.explainFn
	f.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("no explain handler")
	}
	return fn(ctx, claimID)
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCalls
}

type recordingSink struct {
	mu       sync.Mutex
	recorded []*models.ClaimDecision
	err      error
}

func (s *recordingSink) RecordDecision(_ context.Context, decision *models.ClaimDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, decision)
	return s.err
}

func validClaim() *models.ClaimRequest {
	return &models.ClaimRequest{
		PolicyID:      "POL-2024-001",
		TreatmentType: models.TreatmentAppendicitis,
		ClaimedAmount: 50000,
		HospitalName:  "City General",
	}
}

func approvedDecision() *models.ClaimDecision {
	return &models.ClaimDecision{
		ClaimID:        "clm-1",
		PolicyID:       "POL-2024-001",
		TreatmentType:  models.TreatmentAppendicitis,
		ClaimedAmount:  50000,
		ApprovedAmount: 45000,
		Decision:       models.DecisionApproved,
		Explanation: models.Explanation{
			Reason:          "Covered under policy",
			ConfidenceScore: 0.9,
		},
	}
}

func createTestOrchestrator(t *testing.T, backend Submitter, timeout time.Duration, sinks ...DecisionSink) *Orchestrator {
	t.Helper()
	return New(backend, timeout, nil, logger.NewTestLogger(t), sinks...)
}

// ============================================================================
// VALIDATION TESTS
// ============================================================================

func TestSubmit_ValidationFailureNeverReachesNetwork(t *testing.T) {
	tests := []struct {
		name  string
		claim *models.ClaimRequest
	}{
		{
			name: "empty policy id",
			claim: &models.ClaimRequest{
				TreatmentType: models.TreatmentCardiac,
				ClaimedAmount: 1000,
			},
		},
		{
			name: "unknown treatment type",
			claim: &models.ClaimRequest{
				PolicyID:      "POL-1",
				TreatmentType: "acupuncture",
				ClaimedAmount: 1000,
			},
		},
		{
			name: "zero amount",
			claim: &models.ClaimRequest{
				PolicyID:      "POL-1",
				TreatmentType: models.TreatmentDental,
				ClaimedAmount: 0,
			},
		},
		{
			name: "negative amount",
			claim: &models.ClaimRequest{
				PolicyID:      "POL-1",
				TreatmentType: models.TreatmentDental,
				ClaimedAmount: -500,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			o := createTestOrchestrator(t, backend, time.Minute)

			_, err := o.Submit(context.Background(), tt.claim)

			require.Error(t, err)
			assert.True(t, clienterrors.IsValidation(err))
			assert.Equal(t, 0, backend.calls(), "validation failures must not reach the backend")
			assert.Equal(t, StateForm, o.State())
		})
	}
}

func TestSubmit_NilClaim(t *testing.T) {
	backend := &fakeBackend{}
	o := createTestOrchestrator(t, backend, time.Minute)

	_, err := o.Submit(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, clienterrors.IsValidation(err))
	assert.Equal(t, 0, backend.calls())
	assert.Equal(t, StateForm, o.State())
}

// ============================================================================
// SUBMISSION TESTS
// ============================================================================

func TestSubmit_Success(t *testing.T) {
	sink := &recordingSink{}
	backend := &fakeBackend{
		submitFn: func(_ context.Context, _ *models.ClaimRequest) (*models.ClaimDecision, error) {
			return approvedDecision(), nil
		},
	}
	o := createTestOrchestrator(t, backend, time.Minute, sink)

	decision, err := o.Submit(context.Background(), validClaim())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, decision.Decision)
	assert.Equal(t, StateDecision, o.State())
	assert.Equal(t, decision, o.Decision())
	require.Len(t, sink.recorded, 1)
	assert.Equal(t, "clm-1", sink.recorded[0].ClaimID)
}

func TestSubmit_DeadlineYieldsTimeoutError(t *testing.T) {
	backend := &fakeBackend{
		submitFn: func(ctx context.Context, _ *models.ClaimRequest) (*models.ClaimDecision, error) {
			<-ctx.Done()
			return nil, clienterrors.NewNetworkError("submit claim", ctx.Err())
		},
	}
	o := createTestOrchestrator(t, backend, 20*time.Millisecond)

	_, err := o.Submit(context.Background(), validClaim())

	require.Error(t, err)
	assert.True(t, clienterrors.IsTimeout(err))
	assert.False(t, clienterrors.IsNetwork(err))
	assert.Equal(t, StateForm, o.State())
	assert.Nil(t, o.Decision())
}

func TestSubmit_NetworkFailureRestoresState(t *testing.T) {
	backend := &fakeBackend{
		submitFn: func(_ context.Context, _ *models.ClaimRequest) (*models.ClaimDecision, error) {
			return nil, clienterrors.NewHTTPStatusError("submit claim", 502)
		},
	}
	o := createTestOrchestrator(t, backend, time.Minute)

	_, err := o.Submit(context.Background(), validClaim())

	require.Error(t, err)
	assert.True(t, clienterrors.IsNetwork(err))
	assert.False(t, clienterrors.IsTimeout(err))
	assert.Equal(t, StateForm, o.State())
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		submitFn: func(_ context.Context, _ *models.ClaimRequest) (*models.ClaimDecision, error) {
			<-release
			return approvedDecision(), nil
		},
	}
	o := createTestOrchestrator(t, backend, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := o.Submit(context.Background(), validClaim())
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		return o.State() == StateSubmitting
	}, 2*time.Second, time.Millisecond)

	_, err := o.Submit(context.Background(), validClaim())
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	close(release)
	<-done
	assert.Equal(t, StateDecision, o.State())
}

func TestSubmit_NewDecisionSupersedesOld(t *testing.T) {
	second := approvedDecision()
	second.ClaimID = "clm-2"
	second.Decision = models.DecisionRejected

	results := []*models.ClaimDecision{approvedDecision(), second}
	backend := &fakeBackend{}
	backend.submitFn = func(_ context.Context, _ *models.ClaimRequest) (*models.ClaimDecision, error) {
		return results[backend.calls()-1], nil
	}
	o := createTestOrchestrator(t, backend, time.Minute)

	_, err := o.Submit(context.Background(), validClaim())
	require.NoError(t, err)
	_, err = o.Submit(context.Background(), validClaim())
	require.NoError(t, err)

	assert.Equal(t, "clm-2", o.Decision().ClaimID)
	assert.Equal(t, models.DecisionRejected, o.Decision().Decision)
}

func TestSubmit_SinkFailureDoesNotFailSubmission(t *testing.T) {
	sink := &recordingSink{err: fmt.Errorf("sink unavailable")}
	backend := &fakeBackend{
		submitFn: func(_ context.Context, _ *models.ClaimRequest) (*models.ClaimDecision, error) {
			return approvedDecision(), nil
		},
	}
	o := createTestOrchestrator(t, backend, time.Minute, sink)

	_, err := o.Submit(context.Background(), validClaim())

	require.NoError(t, err)
	assert.Equal(t, StateDecision, o.State())
}

// ============================================================================
// EXPLANATION TESTS
// ============================================================================

func TestFetchExplanation_WithoutDecision(t *testing.T) {
	o := createTestOrchestrator(t, &fakeBackend{}, time.Minute)

	_, err := o.FetchExplanation(context.Background())

	require.Error(t, err)
	assert.True(t, clienterrors.IsValidation(err))
}

func TestFetchExplanation_SuccessAndDismiss(t *testing.T) {
	backend := &fakeBackend{
		submitFn: func(_ context.Context, _ *models.ClaimRequest) (*models.ClaimDecision, error) {
			return approvedDecision(), nil
		},
		explainFn: func(_ context.Context, claimID string) (*models.DetailedExplanation, error) {
			assert.Equal(t, "clm-1", claimID)
			return &models.DetailedExplanation{
				DecisionSummary: "Approved for 45000",
				Reasoning:       models.Reasoning{PrimaryReason: "Covered"},
			}, nil
		},
	}
	o := createTestOrchestrator(t, backend, time.Minute)

	_, err := o.Submit(context.Background(), validClaim())
	require.NoError(t, err)

	explanation, err := o.FetchExplanation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Approved for 45000", explanation.DecisionSummary)
	assert.Equal(t, StateExplanation, o.State())

	o.Dismiss()
	assert.Equal(t, StateDecision, o.State())
	assert.Equal(t, "clm-1", o.Decision().ClaimID)
}

func TestFetchExplanation_FailureLeavesDecisionIntact(t *testing.T) {
	backend := &fakeBackend{
		submitFn: func(_ context.Context, _ *models.ClaimRequest) (*models.ClaimDecision, error) {
			return approvedDecision(), nil
		},
		explainFn: func(_ context.Context, _ string) (*models.DetailedExplanation, error) {
			return nil, clienterrors.NewHTTPStatusError("fetch explanation", 404)
		},
	}
	o := createTestOrchestrator(t, backend, time.Minute)

	_, err := o.Submit(context.Background(), validClaim())
	require.NoError(t, err)

	_, err = o.FetchExplanation(context.Background())

	require.Error(t, err)
	assert.True(t, clienterrors.IsNetwork(err))
	assert.Equal(t, StateDecision, o.State())
	assert.Equal(t, "clm-1", o.Decision().ClaimID)
	assert.Nil(t, o.Explanation())
}

// ============================================================================
// RESET TESTS
// ============================================================================

func TestReset_ReturnsToForm(t *testing.T) {
	backend := &fakeBackend{
		submitFn: func(_ context.Context, _ *models.ClaimRequest) (*models.ClaimDecision, error) {
			return approvedDecision(), nil
		},
	}
	o := createTestOrchestrator(t, backend, time.Minute)

	_, err := o.Submit(context.Background(), validClaim())
	require.NoError(t, err)

	o.Reset()

	assert.Equal(t, StateForm, o.State())
	assert.Nil(t, o.Decision())
	assert.Nil(t, o.Explanation())
}
