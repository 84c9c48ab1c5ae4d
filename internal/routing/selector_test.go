package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchkit/disbursement-service/internal/domain"
)

func testConnectors() []domain.Connector {
	return []domain.Connector{
		{ID: "upi-npci", Type: domain.ConnectorUPI, Enabled: true, Status: domain.ConnectorActive, Fee: 0, ETA: "5s"},
		{ID: "upi-psp", Type: domain.ConnectorUPI, Enabled: true, Status: domain.ConnectorActive, Fee: 2, ETA: "5s"},
		{ID: "bank-imps", Type: domain.ConnectorBank, Enabled: true, Status: domain.ConnectorActive, Fee: 5, ETA: "30m"},
		{ID: "bank-rtgs", Type: domain.ConnectorBank, Enabled: true, Status: domain.ConnectorActive, Fee: 25, ETA: "2h"},
		{ID: "bank-neft", Type: domain.ConnectorBank, Enabled: true, Status: domain.ConnectorDown, Fee: 2.5, ETA: "2h"},
		{ID: "card-rails", Type: domain.ConnectorCard, Enabled: true, Status: domain.ConnectorActive, Fee: 12, ETA: "1m"},
		{ID: "wallet-pay", Type: domain.ConnectorWallet, Enabled: false, Status: domain.ConnectorActive, Fee: 1, ETA: "10s"},
	}
}

func testLimits() map[domain.ConnectorType]int64 {
	return map[domain.ConnectorType]int64{
		domain.ConnectorUPI:    100000,
		domain.ConnectorBank:   10000000,
		domain.ConnectorCard:   500000,
		domain.ConnectorWallet: 100000,
	}
}

func routeIDs(routes []RankedRoute) []string {
	ids := make([]string, len(routes))
	for i, r := range routes {
		ids[i] = r.Connector.ID
	}
	return ids
}

func TestSelectExcludesDisabledAndDown(t *testing.T) {
	routes := Select(3000, testConnectors(), testLimits())

	ids := routeIDs(routes)
	assert.NotContains(t, ids, "wallet-pay")
	assert.NotContains(t, ids, "bank-neft")
}

func TestSelectExcludesOverCeiling(t *testing.T) {
	// 200000 INR exceeds the UPI and wallet ceilings but not bank or card.
	routes := Select(200000, testConnectors(), testLimits())

	ids := routeIDs(routes)
	assert.NotContains(t, ids, "upi-npci")
	assert.NotContains(t, ids, "upi-psp")
	assert.Contains(t, ids, "bank-imps")
	assert.Contains(t, ids, "card-rails")
}

func TestSelectOrdersByETAThenFee(t *testing.T) {
	routes := Select(3000, testConnectors(), testLimits())

	require.Equal(t, []string{"upi-npci", "upi-psp", "card-rails", "bank-imps", "bank-rtgs"}, routeIDs(routes))
	assert.True(t, routes[0].Recommended)
	for _, r := range routes[1:] {
		assert.False(t, r.Recommended)
	}
}

func TestSelectEmptyWhenNothingRoutable(t *testing.T) {
	routes := Select(20000000, testConnectors(), testLimits())

	assert.Empty(t, routes)
}

func TestSelectIsDeterministic(t *testing.T) {
	first := Select(3000, testConnectors(), testLimits())
	second := Select(3000, testConnectors(), testLimits())

	assert.Equal(t, first, second)
}

func TestSelectUnparseableETASortsLast(t *testing.T) {
	connectors := []domain.Connector{
		{ID: "weird", Type: domain.ConnectorUPI, Enabled: true, Status: domain.ConnectorActive, Fee: 0, ETA: "soon"},
		{ID: "upi-npci", Type: domain.ConnectorUPI, Enabled: true, Status: domain.ConnectorActive, Fee: 0, ETA: "5s"},
	}

	routes := Select(3000, connectors, testLimits())

	require.Len(t, routes, 2)
	assert.Equal(t, "upi-npci", routes[0].Connector.ID)
	assert.Equal(t, "weird", routes[1].Connector.ID)
}

func TestParseETA(t *testing.T) {
	cases := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"5s", 5, true},
		{"30m", 1800, true},
		{"2h", 7200, true},
		{"1.5h", 5400, true},
		{" 10s ", 10, true},
		{"", 0, false},
		{"s", 0, false},
		{"soon", 0, false},
		{"-5s", 0, false},
		{"5d", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseETA(tc.in)
		assert.Equal(t, tc.wantOK, ok, "input %q", tc.in)
		if tc.wantOK {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}
