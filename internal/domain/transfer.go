/**
 * @description
 * This file defines the transfer model: the ephemeral, in-memory record of one
 * "send" operation as it moves through the staged payout pipeline. A transfer
 * is created when an operator confirms a route for a beneficiary and is driven
 * to a terminal state by the orchestrator; nothing about it survives a restart.
 *
 * @notes
 * - The event log is append-only and fully orders every transition for audit
 *   and display. Events are never rewritten or removed.
 * - The selected connector is captured by value at initiation, so later
 *   registry mutations (disable, reorder) cannot affect an in-flight transfer.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferStatus is one state of the payout pipeline. States advance in the
// declared order only; FAILED is reachable from any of them.
type TransferStatus string

const (
	TransferInitiated           TransferStatus = "INITIATED"
	TransferRiskCheck           TransferStatus = "RISK_CHECK"
	TransferAuthorizing         TransferStatus = "AUTHORIZING"
	TransferAuthorized          TransferStatus = "AUTHORIZED"
	TransferRouting             TransferStatus = "ROUTING"
	TransferCreditInstruction   TransferStatus = "CREDIT_INSTRUCTION"
	TransferPayoutRequest       TransferStatus = "PAYOUT_REQUEST"
	TransferSettlementPending   TransferStatus = "SETTLEMENT_PENDING"
	TransferSettlementConfirmed TransferStatus = "SETTLEMENT_CONFIRMED"
	TransferPaid                TransferStatus = "PAID"
	TransferFailed              TransferStatus = "FAILED"
)

// Terminal reports whether the status ends the pipeline.
func (s TransferStatus) Terminal() bool {
	return s == TransferPaid || s == TransferFailed
}

// ComplianceDecision is the gate outcome for a transfer attempt.
type ComplianceDecision string

const (
	DecisionCleared ComplianceDecision = "CLEARED"
	DecisionHold    ComplianceDecision = "HOLD"
	DecisionBlocked ComplianceDecision = "BLOCKED"
)

// AuthMethod is the authorization scheme selected for a connector type.
type AuthMethod string

const (
	Auth3DS     AuthMethod = "3DS"
	AuthUPIPIN  AuthMethod = "UPI_PIN"
	AuthPending AuthMethod = "PENDING"
	AuthInstant AuthMethod = "INSTANT"
)

// TransferEvent is one entry of a transfer's append-only event log.
type TransferEvent struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Transfer is one in-flight or completed send operation.
type Transfer struct {
	ID            uuid.UUID          `json:"id"`
	BeneficiaryID string             `json:"beneficiary_id"`
	Amount        int64              `json:"amount"`
	Currency      string             `json:"currency"`
	AmountINR     int64              `json:"amount_inr"`
	Connector     Connector          `json:"connector"`
	Purpose       string             `json:"purpose,omitempty"`
	RiskScore     float64            `json:"risk_score"`
	Decision      ComplianceDecision `json:"compliance_decision"`
	Status        TransferStatus     `json:"status"`
	FailureReason string             `json:"failure_reason,omitempty"`
	PaymentRef    string             `json:"payment_ref,omitempty"`
	Events        []TransferEvent    `json:"events"`
	CreatedAt     time.Time          `json:"created_at"`
}
