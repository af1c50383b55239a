// internal/models/claim_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionOutcome_StrictDecode(t *testing.T) {
	var decision ClaimDecision

	err := json.Unmarshal([]byte(`{"claim_id":"c1","decision":"approved"}`), &decision)
	require.NoError(t, err)
	assert.Equal(t, DecisionApproved, decision.Decision)

	err = json.Unmarshal([]byte(`{"claim_id":"c1","decision":"escalated"}`), &decision)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escalated")
}

func TestClaimRequest_WireShape(t *testing.T) {
	payload, err := json.Marshal(&ClaimRequest{
		PolicyID:      "POL-1",
		TreatmentType: TreatmentGeneralSurgery,
		ClaimedAmount: 1200.50,
	})
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &wire))

	assert.Equal(t, "POL-1", wire["policy_id"])
	assert.Equal(t, "general_surgery", wire["treatment_type"])
	assert.Equal(t, 1200.50, wire["claimed_amount"])
	assert.NotContains(t, wire, "hospital_name")
}
