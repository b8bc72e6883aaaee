package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MerchantMood string

const (
	MoodFriendly MerchantMood = "friendly"
	MoodNeutral  MerchantMood = "neutral"
	MoodGrumpy   MerchantMood = "grumpy"
	MoodShrewd   MerchantMood = "shrewd"
)

type Merchant struct {
	bun.BaseModel `bun:"table:merchants,alias:m"`

	ID              int64        `bun:"id,pk,autoincrement"`
	Name            string       `bun:"name,notnull"`
	Personality     MerchantMood `bun:"personality,notnull,default:'neutral'"`
	District        string       `bun:"district,notnull"`
	Latitude        float64      `bun:"latitude,notnull"`
	Longitude       float64      `bun:"longitude,notnull"`
	RequiredLicense int          `bun:"required_license,notnull,default:1"`
	PriceModifier   float64      `bun:"price_modifier,notnull,default:1.0"`

	// Written by the external restock scheduler, never by this server.
	LastRestocked time.Time `bun:"last_restocked"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Stock []*MerchantStock `bun:"rel:has-many,join:id=merchant_id"`
}

// Coordinates satisfies the geospatial query helpers.
func (m *Merchant) Coordinates() (lat, lng float64) {
	return m.Latitude, m.Longitude
}

// MerchantStock is one stock line. A child table rather than a list
// embedded in the merchant row so a purchase can decrement the count
// with a single guarded UPDATE instead of rewriting a shared blob.
type MerchantStock struct {
	bun.BaseModel `bun:"table:merchant_stocks,alias:ms"`

	ID         int64  `bun:"id,pk,autoincrement"`
	MerchantID int64  `bun:"merchant_id,notnull,unique:merchant_item"`
	ItemName   string `bun:"item_name,notnull,unique:merchant_item"`
	Grade      string `bun:"grade,notnull,default:'common'"`
	UnitPrice  int64  `bun:"unit_price,notnull"`
	Quantity   int    `bun:"quantity,notnull,default:0"`

	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
