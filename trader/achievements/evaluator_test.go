package achievements

import (
	"testing"

	"github.com/seoultrader/server/trader/database/models"
)

func TestAggregatesProgressFor(t *testing.T) {
	agg := Aggregates{
		TradeCount:        50,
		SellRevenue:       120000,
		Level:             12,
		StatTotal:         55,
		DistinctItems:     7,
		DistinctDistricts: 4,
		MerchantFriends:   2,
	}

	tests := []struct {
		condition string
		want      int64
	}{
		{models.ConditionTradeCount, 50},
		{models.ConditionSellRevenue, 120000},
		{models.ConditionLevel, 12},
		{models.ConditionStatTotal, 55},
		{models.ConditionDistinctItems, 7},
		{models.ConditionDistinctDistricts, 4},
		{models.ConditionMerchantFriends, 2},
		{models.ConditionNegotiations, 25},
		{"bogus_condition", 0},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			if got := agg.progressFor(tt.condition); got != tt.want {
				t.Errorf("progressFor(%q) = %d, want %d", tt.condition, got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	def := &models.Achievement{
		AchievementID: "trader_100",
		ConditionType: models.ConditionTradeCount,
		Target:        100,
	}

	tests := []struct {
		name          string
		tradeCount    int64
		wantProgress  int64
		wantCompleted bool
	}{
		{"zero", 0, 0, false},
		{"partial", 42, 42, false},
		{"exact target", 100, 100, true},
		{"overshoot capped", 250, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress, completed := evaluate(def, Aggregates{TradeCount: tt.tradeCount})
			if progress != tt.wantProgress {
				t.Errorf("progress = %d, want %d", progress, tt.wantProgress)
			}
			if completed != tt.wantCompleted {
				t.Errorf("completed = %v, want %v", completed, tt.wantCompleted)
			}
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	def := &models.Achievement{
		AchievementID: "seller_100k",
		ConditionType: models.ConditionSellRevenue,
		Target:        100000,
	}
	agg := Aggregates{SellRevenue: 64000}

	p1, c1 := evaluate(def, agg)
	p2, c2 := evaluate(def, agg)
	if p1 != p2 || c1 != c2 {
		t.Errorf("re-evaluation diverged: (%d,%v) then (%d,%v)", p1, c1, p2, c2)
	}
}

func TestNegotiationsHalvesTradeCount(t *testing.T) {
	tests := []struct {
		trades int64
		want   int64
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{49, 24},
		{50, 25},
	}
	for _, tt := range tests {
		agg := Aggregates{TradeCount: tt.trades}
		if got := agg.Negotiations(); got != tt.want {
			t.Errorf("Negotiations() with %d trades = %d, want %d", tt.trades, got, tt.want)
		}
	}
}
