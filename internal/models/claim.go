package models

import (
	"encoding/json"
	"fmt"
)

// TreatmentType identifies the category of medical treatment claimed.
type TreatmentType string

const (
	TreatmentAppendicitis    TreatmentType = "appendicitis"
	TreatmentCardiac         TreatmentType = "cardiac"
	TreatmentOrthopedic      TreatmentType = "orthopedic"
	TreatmentDental          TreatmentType = "dental"
	TreatmentMaternity       TreatmentType = "maternity"
	TreatmentAccident        TreatmentType = "accident"
	TreatmentGeneralSurgery  TreatmentType = "general_surgery"
	TreatmentHospitalization TreatmentType = "hospitalization"
	TreatmentOther           TreatmentType = "other"
)

// KnownTreatmentTypes lists the values accepted by claim validation.
var KnownTreatmentTypes = []TreatmentType{
	TreatmentAppendicitis,
	TreatmentCardiac,
	TreatmentOrthopedic,
	TreatmentDental,
	TreatmentMaternity,
	TreatmentAccident,
	TreatmentGeneralSurgery,
	TreatmentHospitalization,
	TreatmentOther,
}

// ClaimRequest is a single claim submission. It is transient: it exists
// for the duration of one attempt and is never retried automatically.
type ClaimRequest struct {
	PolicyID      string        `json:"policy_id"`
	TreatmentType TreatmentType `json:"treatment_type"`
	ClaimedAmount float64       `json:"claimed_amount"`
	HospitalName  string        `json:"hospital_name,omitempty"`
	TreatmentDate string        `json:"treatment_date,omitempty"`
	Description   string        `json:"description,omitempty"`
}

// DecisionOutcome is the adjudication result for a claim. Closed set,
// strict decode.
type DecisionOutcome string

const (
	DecisionApproved    DecisionOutcome = "approved"
	DecisionRejected    DecisionOutcome = "rejected"
	DecisionUnderReview DecisionOutcome = "under_review"
)

func (d *DecisionOutcome) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch DecisionOutcome(raw) {
	case DecisionApproved, DecisionRejected, DecisionUnderReview:
		*d = DecisionOutcome(raw)
		return nil
	default:
		return fmt.Errorf("unknown decision outcome %q", raw)
	}
}

// Explanation carries the machine-generated rationale attached to a
// decision.
type Explanation struct {
	Reason             string             `json:"reason"`
	CalculationDetails map[string]float64 `json:"calculation_details"`
	RelevantClauses    []string           `json:"relevant_clauses"`
	ConfidenceScore    float64            `json:"confidence_score"`
}

// ClaimDecision is the backend's adjudication of one submission.
// Immutable once received; superseded by the next submission.
type ClaimDecision struct {
	ClaimID        string          `json:"claim_id"`
	PolicyID       string          `json:"policy_id"`
	TreatmentType  TreatmentType   `json:"treatment_type"`
	ClaimedAmount  float64         `json:"claimed_amount"`
	ApprovedAmount float64         `json:"approved_amount"`
	Decision       DecisionOutcome `json:"decision"`
	Explanation    Explanation     `json:"explanation"`
}

// DecisionFactor is one line item of detailed reasoning.
type DecisionFactor struct {
	Factor      string `json:"factor"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Reasoning is the structured reasoning block of a detailed explanation.
type Reasoning struct {
	PrimaryReason   string           `json:"primary_reason"`
	DecisionFactors []DecisionFactor `json:"decision_factors"`
}

// DetailedExplanation is fetched lazily by claim id and is not cached
// beyond its display lifetime.
type DetailedExplanation struct {
	DecisionSummary string          `json:"decision_summary"`
	Reasoning       Reasoning       `json:"reasoning"`
	NextSteps       []string        `json:"next_steps"`
	AuditTrail      json.RawMessage `json:"audit_trail,omitempty"`
}
