/**
 * @description
 * This file defines the rate and rule tables the core functions consume: the
 * FX rate table, per-connector-type transaction ceilings, risk thresholds, and
 * the scheme's stage amounts. Tables are explicitly passed to route selection
 * and risk scoring rather than read from globals, keeping both pure functions
 * of their inputs.
 */

package domain

// RiskThresholds holds the score cut-offs for compliance decisions.
type RiskThresholds struct {
	High float64 `json:"high" yaml:"high"`
}

// StageAmounts holds the operator-editable benefit amounts per stage.
type StageAmounts struct {
	ANC           int64 `json:"anc" yaml:"anc"`
	DeliveryBoy   int64 `json:"delivery_boy" yaml:"delivery_boy"`
	DeliveryGirl  int64 `json:"delivery_girl" yaml:"delivery_girl"`
	Immunisation1 int64 `json:"immunisation1" yaml:"immunisation1"`
	Immunisation2 int64 `json:"immunisation2" yaml:"immunisation2"`
}

// Tables bundles the static lookup data for quoting and scoring.
type Tables struct {
	// FXRates maps "{CUR}-INR" keys to conversion rates.
	FXRates map[string]float64 `json:"fx_rates" yaml:"fx_rates"`
	// Limits is the per-connector-type transaction ceiling in INR.
	Limits map[ConnectorType]int64 `json:"limits" yaml:"limits"`
	// Thresholds gates risk scores into compliance decisions.
	Thresholds RiskThresholds `json:"thresholds" yaml:"thresholds"`
}

// DefaultTables returns the built-in rate and rule tables used when no
// registry file overrides them.
func DefaultTables() Tables {
	return Tables{
		FXRates: map[string]float64{
			"USD-INR": 83.20,
			"EUR-INR": 90.10,
			"GBP-INR": 105.30,
			"AED-INR": 22.65,
			"SGD-INR": 61.80,
			"NPR-INR": 0.625,
		},
		Limits: map[ConnectorType]int64{
			ConnectorUPI:    100000,
			ConnectorBank:   10000000,
			ConnectorCard:   500000,
			ConnectorWallet: 100000,
		},
		Thresholds: RiskThresholds{High: 0.7},
	}
}

// DefaultStageAmounts returns the scheme's published benefit amounts.
func DefaultStageAmounts() StageAmounts {
	return StageAmounts{
		ANC:           3000,
		DeliveryBoy:   4000,
		DeliveryGirl:  5000,
		Immunisation1: 2000,
		Immunisation2: 3000,
	}
}
