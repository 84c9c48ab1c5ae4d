/**
 * @description
 * This file defines the payout connector model. A connector is a payout rail
 * (UPI, bank transfer, card, wallet) with its own fee, ETA, and transaction
 * ceiling. The registry of connectors is operator-managed: operators toggle
 * the Enabled flag and reorder priorities, while the operational Status is
 * owned by the (simulated) service side.
 */

package domain

import "strings"

// ConnectorType is the payout rail family.
type ConnectorType string

const (
	ConnectorUPI    ConnectorType = "UPI"
	ConnectorBank   ConnectorType = "BANK"
	ConnectorCard   ConnectorType = "CARD"
	ConnectorWallet ConnectorType = "WALLET"
)

// ConnectorStatus is the service-side operational state, independent of the
// operator-controlled Enabled flag.
type ConnectorStatus string

const (
	ConnectorActive ConnectorStatus = "ACTIVE"
	ConnectorDown   ConnectorStatus = "DOWN"
)

// Connector is one payout route.
type Connector struct {
	ID         string          `json:"id" yaml:"id"`
	Name       string          `json:"name" yaml:"name"`
	Type       ConnectorType   `json:"type" yaml:"type"`
	Enabled    bool            `json:"enabled" yaml:"enabled"`
	Status     ConnectorStatus `json:"status" yaml:"status"`
	Fee        float64         `json:"fee" yaml:"fee"`
	ETA        string          `json:"eta" yaml:"eta"` // duration string, e.g. "5s", "30m", "2h"
	Currencies []string        `json:"currencies" yaml:"currencies"`
	Countries  []string        `json:"countries" yaml:"countries"`
	Priority   int             `json:"priority" yaml:"priority"`
}

// Routable reports whether the connector may be offered for routing:
// operator-enabled AND operationally active.
func (c Connector) Routable() bool {
	return c.Enabled && c.Status == ConnectorActive
}

// InstantSettlement reports whether payouts over this connector settle
// immediately. Bank rails settle T+1 unless they are IMPS.
func (c Connector) InstantSettlement() bool {
	if c.Type != ConnectorBank {
		return true
	}
	return strings.Contains(strings.ToLower(c.ID), "imps")
}
