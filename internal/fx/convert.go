/**
 * @description
 * This package converts transfer amounts into INR for downstream ceiling
 * checks. The rate table is passed in explicitly so conversion stays a pure
 * function of its inputs.
 *
 * @notes
 * - An unknown currency pair degrades to rate 1.0 instead of failing; the
 *   Converted.RateKnown flag lets callers log the degrade. Quoting must not
 *   break for currencies missing from the demo rate table.
 */

package fx

import "math"

// Converted is the outcome of an FX conversion. The original amount and
// currency are retained alongside the INR value used for limit checks.
type Converted struct {
	Amount    int64   `json:"amount"`
	Currency  string  `json:"currency"`
	Rate      float64 `json:"rate"`
	AmountINR int64   `json:"amount_inr"`
	RateKnown bool    `json:"rate_known"`
}

// Convert converts amount in the given currency to INR using the rate table.
// INR passes through at rate 1. Any other currency is looked up under the
// "{CUR}-INR" key; a missing key degrades to rate 1.0 with RateKnown=false.
func Convert(amount int64, currency string, rates map[string]float64) Converted {
	if currency == "INR" {
		return Converted{Amount: amount, Currency: currency, Rate: 1, AmountINR: amount, RateKnown: true}
	}
	rate, ok := rates[currency+"-INR"]
	if !ok {
		rate = 1.0
	}
	return Converted{
		Amount:    amount,
		Currency:  currency,
		Rate:      rate,
		AmountINR: int64(math.Round(float64(amount) * rate)),
		RateKnown: ok,
	}
}
