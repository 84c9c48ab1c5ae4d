/**
 * @description
 * This file defines the core domain models for scheme beneficiaries: identity,
 * eligibility constraints, risk profile, compliance flags, KYC state, and the
 * benefit-stage timeline.
 *
 * @notes
 * - Eligibility is derived, never stored: a beneficiary is eligible iff every
 *   constraint flag is true. Callers must go through Eligible()/EligibilityStatus()
 *   so that mutation paths cannot desynchronise the two.
 * - Amounts are stored as `int64` whole rupees, matching the scheme's published
 *   stage amounts (ANC 3000, Delivery 4000/5000, Immunisation 2000/3000).
 */

package domain

import "time"

// KYCStatus is the beneficiary's identity verification state.
type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCVerified KYCStatus = "VERIFIED"
	KYCFailed   KYCStatus = "FAILED"
)

// ComplianceFlag tags a beneficiary with a screening outcome.
type ComplianceFlag string

const (
	FlagHighRisk     ComplianceFlag = "HIGH_RISK"
	FlagPEPMatch     ComplianceFlag = "PEP_MATCH"
	FlagSanctionsHit ComplianceFlag = "SANCTIONS_HIT"
)

// StageName is one of the fixed benefit stages, in scheme order.
type StageName string

const (
	StageANC           StageName = "ANC"
	StageDelivery      StageName = "Delivery"
	StageImmunisation1 StageName = "Immunisation 1"
	StageImmunisation2 StageName = "Immunisation 2"
)

// StageOrder is the fixed forward order of benefit stages.
var StageOrder = []StageName{StageANC, StageDelivery, StageImmunisation1, StageImmunisation2}

// StageStatus is the payment state of one timeline stage.
type StageStatus string

const (
	StageDue  StageStatus = "DUE"
	StagePaid StageStatus = "PAID"
	StageHeld StageStatus = "HELD"
)

// Constraints is the boolean eligibility constraint map. All five must hold
// for a beneficiary to be eligible.
type Constraints struct {
	Resident      bool `json:"resident"`
	AadhaarLinked bool `json:"aadhaar_linked"`
	GovtHospital  bool `json:"govt_hospital"`
	MaxDeliveries bool `json:"max_deliveries"`
	MaxChildren   bool `json:"max_children"`
}

// AllSatisfied reports whether every constraint flag is true.
func (c Constraints) AllSatisfied() bool {
	return c.Resident && c.AadhaarLinked && c.GovtHospital && c.MaxDeliveries && c.MaxChildren
}

// RiskProfile is the stored model output for a beneficiary.
type RiskProfile struct {
	Score   float64  `json:"score"` // in [0,1]
	Reasons []string `json:"reasons"`
}

// Migration records a displacement from one district to another.
type Migration struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// PayoutMethod describes where a beneficiary receives funds.
type PayoutMethod struct {
	Type    string `json:"type"` // e.g. 'upi', 'bank'
	VPA     string `json:"vpa,omitempty"`
	Account string `json:"account_masked,omitempty"`
	IFSC    string `json:"ifsc,omitempty"`
}

// StageRecord is one entry of a beneficiary's benefit timeline.
// Invariant: Status == PAID implies Date and PaymentRef are both set;
// Status in {DUE, HELD} implies both are absent.
type StageRecord struct {
	Stage      StageName   `json:"stage"`
	Amount     int64       `json:"amount"`
	Status     StageStatus `json:"status"`
	Date       *time.Time  `json:"date,omitempty"`
	PaymentRef string      `json:"payment_ref,omitempty"`
}

// MarkPaid transitions the stage to PAID with its completion date and payment
// reference, preserving the PAID invariant.
func (s *StageRecord) MarkPaid(date time.Time, paymentRef string) {
	s.Status = StagePaid
	s.Date = &date
	s.PaymentRef = paymentRef
}

// Beneficiary is a scheme enrollee.
type Beneficiary struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	AadhaarMasked   string           `json:"aadhaar_masked"`
	Mobile          string           `json:"mobile"`
	District        string           `json:"district"`
	PHCID           string           `json:"phc_id"`
	DeliveriesCount int              `json:"deliveries_count"`
	ChildGender     string           `json:"child_gender"`
	Constraints     Constraints      `json:"constraints"`
	Migration       *Migration       `json:"migration,omitempty"`
	DisasterFlags   []string         `json:"disaster_flags"`
	RiskProfile     RiskProfile      `json:"risk_profile"`
	ComplianceFlags []ComplianceFlag `json:"compliance_flags"`
	PayoutMethod    PayoutMethod     `json:"payout_method"`
	KYCStatus       KYCStatus        `json:"kyc_status"`
	Timeline        []StageRecord    `json:"timeline"`
}

// Eligible reports whether all eligibility constraints are satisfied.
func (b *Beneficiary) Eligible() bool {
	return b.Constraints.AllSatisfied()
}

// EligibilityStatus returns the derived display status, "eligible" or "ineligible".
func (b *Beneficiary) EligibilityStatus() string {
	if b.Eligible() {
		return "eligible"
	}
	return "ineligible"
}

// HasComplianceFlag reports whether the given flag is present.
func (b *Beneficiary) HasComplianceFlag(flag ComplianceFlag) bool {
	for _, f := range b.ComplianceFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// HasDisasterFlag reports whether the given disaster marker is present.
func (b *Beneficiary) HasDisasterFlag(flag string) bool {
	for _, f := range b.DisasterFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// RiskBand buckets the stored risk score for display filters:
// low <= 0.3 < medium <= 0.7 < high.
func (b *Beneficiary) RiskBand() string {
	switch {
	case b.RiskProfile.Score <= 0.3:
		return "low"
	case b.RiskProfile.Score <= 0.7:
		return "medium"
	default:
		return "high"
	}
}
