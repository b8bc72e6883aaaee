package achievements

import (
	"github.com/seoultrader/server/trader/database/models"
)

// Aggregates is the authoritative snapshot achievement progress is
// recomputed from. Progress is never incremented in place; re-running
// the evaluation against unchanged aggregates changes nothing.
type Aggregates struct {
	TradeCount        int64
	SellRevenue       int64
	Level             int
	StatTotal         int
	DistinctItems     int64
	DistinctDistricts int64
	MerchantFriends   int64
}

// Negotiations approximates completed negotiations as half the trade
// count. The approximation is intentional; there is no per-negotiation
// record to count.
func (a Aggregates) Negotiations() int64 {
	return a.TradeCount / 2
}

// progressFor maps one condition type to its aggregate value. Unknown
// condition types evaluate to zero so a bad catalog row can never
// complete.
func (a Aggregates) progressFor(conditionType string) int64 {
	switch conditionType {
	case models.ConditionTradeCount:
		return a.TradeCount
	case models.ConditionSellRevenue:
		return a.SellRevenue
	case models.ConditionLevel:
		return int64(a.Level)
	case models.ConditionStatTotal:
		return int64(a.StatTotal)
	case models.ConditionDistinctItems:
		return a.DistinctItems
	case models.ConditionDistinctDistricts:
		return a.DistinctDistricts
	case models.ConditionMerchantFriends:
		return a.MerchantFriends
	case models.ConditionNegotiations:
		return a.Negotiations()
	default:
		return 0
	}
}

// evaluate computes the progress value and completion for one
// definition. Progress is capped at the target so the stored value
// never overshoots.
func evaluate(def *models.Achievement, agg Aggregates) (progress int64, completed bool) {
	progress = agg.progressFor(def.ConditionType)
	if progress >= def.Target {
		return def.Target, true
	}
	if progress < 0 {
		progress = 0
	}
	return progress, false
}
