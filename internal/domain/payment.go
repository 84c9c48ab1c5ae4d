/**
 * @description
 * This file defines the settlement record produced when a benefit stage is
 * paid. A payment carries the fixed six-hop settlement path the funds take
 * from the scheme treasury to the beneficiary's bank.
 *
 * @notes
 * - Payments are append-only and derived exactly once from a stage transition
 *   to PAID; no mutable entity owns them.
 * - Hop timestamps are strictly non-decreasing in path order.
 */

package domain

import "time"

// SettlementPath is the six-hop route a payment takes. The NPCI hop carries
// the credit instruction, the externally meaningful "money is committed" point.
type SettlementPath struct {
	PFMS                time.Time `json:"pfms"`
	Treasury            time.Time `json:"treasury"`
	RemitterBank        time.Time `json:"remitter_bank"`
	NPCI                time.Time `json:"npci"`
	CreditInstructionAt time.Time `json:"credit_instruction_at"`
	BeneficiaryBank     time.Time `json:"beneficiary_bank"`
	SettlementMode      string    `json:"settlement_mode"`
	SettledAt           time.Time `json:"settled_at"`
}

// Ordered reports whether the hop timestamps are non-decreasing in path order.
func (p SettlementPath) Ordered() bool {
	hops := []time.Time{p.PFMS, p.Treasury, p.RemitterBank, p.NPCI, p.BeneficiaryBank, p.SettledAt}
	for i := 1; i < len(hops); i++ {
		if hops[i].Before(hops[i-1]) {
			return false
		}
	}
	return true
}

// Payment is one settled disbursement for a benefit stage.
type Payment struct {
	ID              string         `json:"id"`
	BeneficiaryID   string         `json:"beneficiary_id"`
	BeneficiaryName string         `json:"beneficiary_name"`
	Stage           StageName      `json:"stage"`
	Amount          int64          `json:"amount"`
	Status          string         `json:"status"` // always SUCCESS; failed transfers never mint a payment
	Path            SettlementPath `json:"path"`
	CreatedAt       time.Time      `json:"created_at"`
}
