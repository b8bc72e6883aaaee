package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// Trade is the immutable record of one completed buy or sell. Rows are
// appended inside the trade transaction and never updated.
type Trade struct {
	bun.BaseModel `bun:"table:trades,alias:t"`

	ID         int64     `bun:"id,pk,autoincrement"`
	TradeID    string    `bun:"trade_id,notnull,unique"`
	PlayerID   int64     `bun:"player_id,notnull"`
	MerchantID int64     `bun:"merchant_id,notnull"`
	ItemName   string    `bun:"item_name,notnull"`
	Grade      string    `bun:"grade,notnull,default:'common'"`
	Quantity   int       `bun:"quantity,notnull,default:1"`
	TradeType  TradeType `bun:"trade_type,notnull"`

	BasePrice  int64 `bun:"base_price,notnull"`
	FinalPrice int64 `bun:"final_price,notnull"`

	DistrictFactor float64 `bun:"district_factor,notnull,default:1.0"`
	TimeFactor     float64 `bun:"time_factor,notnull,default:1.0"`
	GradeFactor    float64 `bun:"grade_factor,notnull,default:1.0"`
	DiscountRate   float64 `bun:"discount_rate,notnull,default:0"`

	District  string   `bun:"district,notnull"`
	Latitude  *float64 `bun:"latitude"`
	Longitude *float64 `bun:"longitude"`

	ExpGained   int `bun:"exp_gained,notnull,default:0"`
	TrustGained int `bun:"trust_gained,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
