package pricing

import (
	"testing"
	"time"
)

// fixedRand pins the random factor so a quote becomes deterministic.
// QuoteBuy maps 0.5 to exactly 1.0; QuoteSell maps r to 0.70+r*0.20.
func fixedRand(v float64) func() float64 {
	return func() float64 { return v }
}

func at(hour int) time.Time {
	// 2025-06-02 is a Monday.
	return time.Date(2025, 6, 2, hour, 0, 0, 0, time.UTC)
}

func TestQuoteBuy(t *testing.T) {
	tests := []struct {
		name      string
		basePrice int64
		grade     string
		district  string
		hour      int
		want      int64
	}{
		{"gangnam business hours common", 5000, "common", "강남구", 14, 7150}, // 5000 * 1.3 * 1.10
		{"unlisted district off hours", 5000, "common", "노원구", 3, 5000},
		{"evening hours", 1000, "common", "노원구", 20, 1050},
		{"rare grade", 1000, "rare", "노원구", 3, 1500},
		{"legendary in gangnam", 2000, "legendary", "강남구", 10, 8580}, // 2000 * 1.3 * 1.10 * 3.0
		{"unknown grade defaults to common", 1000, "mythic", "노원구", 3, 1000},
		{"zero base price passes through", 0, "common", "강남구", 14, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator().WithRand(fixedRand(0.5))
			q := calc.QuoteBuy(tt.basePrice, tt.grade, tt.district, at(tt.hour))
			if q.Price != tt.want {
				t.Errorf("QuoteBuy() = %d, want %d", q.Price, tt.want)
			}
		})
	}
}

func TestQuoteBuyRandomnessBounds(t *testing.T) {
	calc := NewCalculator()
	for i := 0; i < 200; i++ {
		q := calc.QuoteBuy(10000, "common", "노원구", at(3))
		if q.Price < 9500 || q.Price > 10500 {
			t.Fatalf("QuoteBuy() = %d, outside [9500, 10500]", q.Price)
		}
	}
}

func TestQuoteSellNeverReachesPurchasePrice(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		district string
		randV    float64
	}{
		{"max rate plain district", 10000, "노원구", 1.0},
		{"max rate with gangnam bonus", 10000, "강남구", 1.0},
		{"min rate", 10000, "노원구", 0.0},
		{"tiny price", 3, "강남구", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator().WithRand(fixedRand(tt.randV))
			got := calc.QuoteSell(tt.current, tt.district)
			if got >= tt.current {
				t.Errorf("QuoteSell() = %d, must be < %d", got, tt.current)
			}
			if got < 0 {
				t.Errorf("QuoteSell() = %d, must be non-negative", got)
			}
		})
	}
}

func TestQuoteSellRateCap(t *testing.T) {
	// Rate 0.90 + bonus 0.03 = 0.93, under the cap.
	calc := NewCalculator().WithRand(fixedRand(1.0))
	if got := calc.QuoteSell(10000, "강남구"); got != 9300 {
		t.Errorf("QuoteSell() = %d, want 9300", got)
	}

	// Plain district max rate is 0.90.
	calc = NewCalculator().WithRand(fixedRand(1.0))
	if got := calc.QuoteSell(10000, "노원구"); got != 9000 {
		t.Errorf("QuoteSell() = %d, want 9000", got)
	}
}

func TestMarketPrice(t *testing.T) {
	// fixedRand(0.5) pins the ±10% factor to exactly 1.0.
	tests := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"weekday business hours", time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC), 1150},
		{"weekday evening", time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC), 1050},
		{"weekday night", time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC), 950},
		{"saturday business hours", time.Date(2025, 6, 7, 14, 0, 0, 0, time.UTC), 1265}, // 1000 * 1.1 * 1.15
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator().WithRand(fixedRand(0.5))
			if got := calc.MarketPrice(1000, tt.now); got != tt.want {
				t.Errorf("MarketPrice() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCachedQuoteStableWithinHour(t *testing.T) {
	calc := NewCalculator()
	now := at(14)

	first := calc.CachedQuote("인삼차", 5000, "common", "강남구", now)
	for i := 0; i < 10; i++ {
		if got := calc.CachedQuote("인삼차", 5000, "common", "강남구", now); got != first {
			t.Fatalf("CachedQuote() = %d, want stable %d", got, first)
		}
	}
}
