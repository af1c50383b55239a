// internal/models/job_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    JobStatus
		wantErr bool
	}{
		{"queued", StatusQueued, false},
		{"processing", StatusProcessing, false},
		{"completed", StatusCompleted, false},
		{"failed", StatusFailed, false},
		{"done", "", true},
		{"", "", true},
		{"COMPLETED", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseJobStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJobStatus_StrictDecode(t *testing.T) {
	var resp StatusResponse
	err := json.Unmarshal([]byte(`{"doc_id":"d1","status":"archived"}`), &resp)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "archived")
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}
