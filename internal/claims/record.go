// Package claims defines the synthetic insurance-claim record published on the stream.
package claims

import (
	"encoding/json"
	"time"
)

// ClaimType distinguishes cashless hospital settlements from reimbursements.
type ClaimType string

// Possible values for ClaimType.
const (
	ClaimTypeCashless      ClaimType = "Cashless"
	ClaimTypeReimbursement ClaimType = "Reimbursement"
)

// SettlementStatus is the adjudication outcome of a claim.
type SettlementStatus string

// Possible values for SettlementStatus.
const (
	StatusSettled SettlementStatus = "Settled"
	StatusPending SettlementStatus = "Pending"
	StatusDenied  SettlementStatus = "Denied"
)

// Denial reasons attached to denied claims.
const (
	DenialFraudSuspected       = "Fraud Suspected"
	DenialPolicyExclusion      = "Policy Exclusion"
	DenialDocumentationIssue   = "Documentation Issue"
	DenialWaitingPeriodPending = "Waiting Period Not Completed"
)

// DenialReasons is the general catalog a denial reason is drawn from.
var DenialReasons = []string{
	DenialFraudSuspected,
	DenialPolicyExclusion,
	DenialDocumentationIssue,
	DenialWaitingPeriodPending,
}

// IsDenialReason reports whether reason belongs to the denial catalog.
func IsDenialReason(reason string) bool {
	for _, r := range DenialReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// Record is one synthetic claim event. Records are created once, serialized and discarded.
type Record struct {
	ClaimID          string           `json:"claim_id"`
	PolicyID         string           `json:"policy_id"`
	HospitalID       string           `json:"hospital_id"`
	ClaimDate        time.Time        `json:"claim_date"`
	SettlementDate   time.Time        `json:"settlement_date"`
	DiagnosisCode    string           `json:"diagnosis_code"`
	ClaimType        ClaimType        `json:"claim_type"`
	TotalAmount      int64            `json:"total_amount"`
	AdmissibleAmount int64            `json:"admissible_amount"`
	SettlementStatus SettlementStatus `json:"settlement_status"`
	DenialReason     *string          `json:"denial_reason"`
	ProcessingDays   int              `json:"processing_days"`
	EventTime        time.Time        `json:"event_time"`
}

// Marshal encodes the record as a single JSON object, the wire format of the stream.
func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Denied reports whether the claim was denied.
func (r Record) Denied() bool {
	return r.SettlementStatus == StatusDenied
}
