/**
 * @description
 * This package computes the composite risk score for a transfer attempt and
 * gates it into a compliance decision. Both functions are pure and
 * deterministic: no I/O, no retries, no clock.
 *
 * Scoring is additive and order-independent, saturating at 1.0:
 * the beneficiary's stored score, plus a ceiling-proximity bump, plus a fixed
 * weight per compliance flag. A SANCTIONS_HIT flag is an absolute veto on the
 * decision regardless of the numeric score.
 */

package risk

import (
	"github.com/mchkit/disbursement-service/internal/domain"
)

// Flag weights and the ceiling-proximity bump. These mirror the scheme's toy
// scoring heuristic; they are not a certified compliance engine.
const (
	nearLimitWeight    = 0.2
	highRiskWeight     = 0.3
	pepMatchWeight     = 0.4
	sanctionsHitWeight = 0.5

	// nearLimitFraction of the connector-type ceiling above which the
	// proximity bump applies.
	nearLimitFraction = 0.8
)

// Score computes the composite risk score in [0,1] for sending amountINR over
// a connector of the given type.
func Score(b *domain.Beneficiary, amountINR int64, connType domain.ConnectorType, limits map[domain.ConnectorType]int64) float64 {
	score := b.RiskProfile.Score

	if limit, ok := limits[connType]; ok && float64(amountINR) > nearLimitFraction*float64(limit) {
		score += nearLimitWeight
	}
	if b.HasComplianceFlag(domain.FlagHighRisk) {
		score += highRiskWeight
	}
	if b.HasComplianceFlag(domain.FlagPEPMatch) {
		score += pepMatchWeight
	}
	if b.HasComplianceFlag(domain.FlagSanctionsHit) {
		score += sanctionsHitWeight
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Decide gates a scored transfer attempt. SANCTIONS_HIT blocks outright,
// independent of the score; otherwise a score above the high threshold holds
// the transfer for manual override, and anything else clears.
func Decide(b *domain.Beneficiary, riskScore float64, thresholds domain.RiskThresholds) domain.ComplianceDecision {
	if b.HasComplianceFlag(domain.FlagSanctionsHit) {
		return domain.DecisionBlocked
	}
	if riskScore > thresholds.High {
		return domain.DecisionHold
	}
	return domain.DecisionCleared
}
