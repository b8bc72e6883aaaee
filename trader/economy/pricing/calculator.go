// Package pricing computes transient, non-persisted prices. Per-trade
// quotes and the standing market-price table use deliberately separate
// multiplier tables.
package pricing

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const quoteCacheSize = 4096

// districtMultipliers prices in the expensive districts above baseline.
// Unlisted districts stay at 1.0.
var districtMultipliers = map[string]float64{
	"강남구":  1.3,
	"서초구":  1.25,
	"중구":   1.2,
	"종로구":  1.15,
	"용산구":  1.15,
	"마포구":  1.1,
	"영등포구": 1.1,
	"성동구":  1.05,
}

// districtSellBonus is the small additive bump a district adds to the
// sell rate. Unlisted districts add nothing.
var districtSellBonus = map[string]float64{
	"강남구": 0.03,
	"서초구": 0.02,
	"마포구": 0.02,
}

var gradeMultipliers = map[string]float64{
	"common":    1.0,
	"uncommon":  1.2,
	"rare":      1.5,
	"epic":      2.0,
	"legendary": 3.0,
}

const (
	sellRateMin = 0.70
	sellRateMax = 0.90
	sellRateCap = 0.95
)

// Quote breaks out the factors applied to one buy quote so the trade
// record can store them.
type Quote struct {
	Price          int64
	DistrictFactor float64
	TimeFactor     float64
	GradeFactor    float64
}

// Calculator derives quotes from base prices. The random source is
// injectable so tests can pin it.
type Calculator struct {
	randFloat func() float64
	cache     *lru.Cache
}

func NewCalculator() *Calculator {
	cache, _ := lru.New(quoteCacheSize)
	return &Calculator{
		randFloat: rand.Float64,
		cache:     cache,
	}
}

// WithRand replaces the random source; for tests.
func (c *Calculator) WithRand(f func() float64) *Calculator {
	c.randFloat = f
	return c
}

// QuoteBuy prices one unit of an item at a merchant. A defect inside the
// calculator must never block a trade: on panic the base price is
// returned unmodified.
func (c *Calculator) QuoteBuy(basePrice int64, grade, district string, now time.Time) (q Quote) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Price quote failed, falling back to base price",
				slog.String("type", "error"),
				slog.String("district", district),
				slog.Any("panic", r))
			q = Quote{Price: basePrice, DistrictFactor: 1, TimeFactor: 1, GradeFactor: 1}
		}
	}()

	if basePrice <= 0 {
		return Quote{Price: basePrice, DistrictFactor: 1, TimeFactor: 1, GradeFactor: 1}
	}

	q.DistrictFactor = districtFactor(district)
	q.TimeFactor = timeOfDayFactor(now.Hour())
	q.GradeFactor = gradeFactor(grade)

	random := 0.95 + c.randFloat()*0.10

	price := float64(basePrice) * q.DistrictFactor * q.TimeFactor * q.GradeFactor * random
	q.Price = int64(math.Floor(price))
	return q
}

// QuoteSell prices a player's inventory item for sale back to a
// merchant. The effective rate is capped at 0.95 and the result is
// clamped below the item's recorded price, so selling never yields more
// than the purchase provenance.
func (c *Calculator) QuoteSell(currentPrice int64, district string) int64 {
	if currentPrice <= 0 {
		return 0
	}

	rate := sellRateMin + c.randFloat()*(sellRateMax-sellRateMin)
	rate += districtSellBonus[district]
	if rate > sellRateCap {
		rate = sellRateCap
	}

	price := int64(math.Floor(float64(currentPrice) * rate))
	if price >= currentPrice {
		price = currentPrice - 1
	}
	if price < 0 {
		price = 0
	}
	return price
}

// MarketPrice computes the standing city-wide price for the market
// table. Weekend and business-hours multipliers differ from the
// per-trade tables on purpose.
func (c *Calculator) MarketPrice(basePrice int64, now time.Time) int64 {
	price := float64(basePrice)

	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		price *= 1.1
	}

	switch hour := now.Hour(); {
	case hour >= 9 && hour <= 18:
		price *= 1.15
	case hour >= 19 && hour <= 22:
		price *= 1.05
	default:
		price *= 0.95
	}

	price *= 0.90 + c.randFloat()*0.20

	return int64(math.Floor(price))
}

// CachedQuote serves the read-only price-board endpoint. Quotes are
// bucketed by hour so the cache turns over naturally; the buy path never
// reads it.
func (c *Calculator) CachedQuote(itemName string, basePrice int64, grade, district string, now time.Time) int64 {
	key := fmt.Sprintf("%s:%s:%d", itemName, district, now.Hour())
	if v, ok := c.cache.Get(key); ok {
		return v.(int64)
	}

	q := c.QuoteBuy(basePrice, grade, district, now)
	c.cache.Add(key, q.Price)
	return q.Price
}

func districtFactor(district string) float64 {
	if m, ok := districtMultipliers[district]; ok {
		return m
	}
	return 1.0
}

func timeOfDayFactor(hour int) float64 {
	switch {
	case hour >= 9 && hour <= 18:
		return 1.10
	case hour >= 19 && hour <= 22:
		return 1.05
	default:
		return 1.0
	}
}

func gradeFactor(grade string) float64 {
	if m, ok := gradeMultipliers[grade]; ok {
		return m
	}
	return 1.0
}
