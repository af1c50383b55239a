package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewHTTPStatusError("submit claim", 503)

	assert.Contains(t, err.Error(), "NETWORK_ERROR")
	assert.Contains(t, err.Error(), "unexpected status 503")
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		expected  bool
	}{
		{"validation matches", NewValidationError("policy_id is required"), IsValidation, true},
		{"validation rejects timeout", NewTimeoutError("submit claim", nil), IsValidation, false},
		{"timeout matches", NewTimeoutError("submit claim", nil), IsTimeout, true},
		{"network matches", NewNetworkError("status", nil), IsNetwork, true},
		{"transient poll matches", NewTransientPollError("doc-1", nil), IsTransientPoll, true},
		{"plain error matches nothing", fmt.Errorf("boom"), IsNetwork, false},
		{"nil matches nothing", nil, IsTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.predicate(tt.err))
		})
	}
}

func TestWrappedPredicates(t *testing.T) {
	wrapped := fmt.Errorf("submitting: %w", NewTimeoutError("submit claim", nil))

	assert.True(t, IsTimeout(wrapped))
	assert.False(t, IsNetwork(wrapped))
}

func TestRetryability(t *testing.T) {
	assert.False(t, NewValidationError("bad amount").Retryable)
	assert.True(t, NewTimeoutError("submit claim", nil).Retryable)
	assert.True(t, NewNetworkError("status", nil).Retryable)
	assert.True(t, NewTransientPollError("doc-1", nil).Retryable)
}
