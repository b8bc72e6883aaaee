package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MarketPrice is the standing city-wide price for one catalog item,
// recomputed on a fixed interval by the market scheduler. Distinct from
// the per-merchant quote a trade uses.
type MarketPrice struct {
	bun.BaseModel `bun:"table:market_prices,alias:mp"`

	ID           int64     `bun:"id,pk,autoincrement"`
	ItemName     string    `bun:"item_name,notnull,unique"`
	BasePrice    int64     `bun:"base_price,notnull"`
	CurrentPrice int64     `bun:"current_price,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
