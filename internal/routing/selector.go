/**
 * @description
 * This package ranks payout connectors for a transfer amount. Selection is a
 * pure function of the registry snapshot and the ceiling table: callers own
 * persisting whichever route the operator picks.
 *
 * Ranking: ascending parsed ETA, ties broken by ascending fee. Connectors
 * whose ETA cannot be parsed sort last. The first ranked route is the
 * recommendation shown to the operator.
 */

package routing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mchkit/disbursement-service/internal/domain"
)

// unparseableETA sorts any connector with a malformed ETA after every
// well-formed one.
const unparseableETA = int64(1) << 62

// RankedRoute is one selectable payout route with its parsed ETA.
type RankedRoute struct {
	Connector   domain.Connector `json:"connector"`
	ETASeconds  int64            `json:"eta_seconds"`
	Recommended bool             `json:"recommended"`
}

// ParseETA converts a duration string like "5s", "30m" or "2h" into seconds.
// The second return is false when the string cannot be parsed.
func ParseETA(eta string) (int64, bool) {
	s := strings.TrimSpace(eta)
	if len(s) < 2 {
		return 0, false
	}
	var mult int64
	switch s[len(s)-1] {
	case 's':
		mult = 1
	case 'm':
		mult = 60
	case 'h':
		mult = 3600
	default:
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return int64(n * float64(mult)), true
}

// Select filters the registry to routable connectors whose type ceiling covers
// amountINR, then ranks them by ETA and fee. An empty result means the caller
// must block transfer initiation.
func Select(amountINR int64, connectors []domain.Connector, limits map[domain.ConnectorType]int64) []RankedRoute {
	routes := make([]RankedRoute, 0, len(connectors))
	for _, c := range connectors {
		if !c.Routable() {
			continue
		}
		if limit, ok := limits[c.Type]; ok && amountINR > limit {
			continue
		}
		secs, ok := ParseETA(c.ETA)
		if !ok {
			secs = unparseableETA
		}
		routes = append(routes, RankedRoute{Connector: c, ETASeconds: secs})
	}

	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].ETASeconds != routes[j].ETASeconds {
			return routes[i].ETASeconds < routes[j].ETASeconds
		}
		return routes[i].Connector.Fee < routes[j].Connector.Fee
	})

	if len(routes) > 0 {
		routes[0].Recommended = true
	}
	return routes
}
