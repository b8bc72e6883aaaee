package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Item grades, ordered by price impact.
const (
	GradeCommon    = "common"
	GradeUncommon  = "uncommon"
	GradeRare      = "rare"
	GradeEpic      = "epic"
	GradeLegendary = "legendary"
)

// Item is the static catalog entry merchants stock and the market price
// table tracks.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Name      string `bun:"name,notnull,unique"`
	BasePrice int64  `bun:"base_price,notnull"`
	Grade     string `bun:"grade,notnull,default:'common'"`
	Category  string `bun:"category"`
}

// InventoryItem is one holding owned by a player. Created on purchase,
// deleted on sale.
type InventoryItem struct {
	bun.BaseModel `bun:"table:inventory_items,alias:inv"`

	ID            int64  `bun:"id,pk,autoincrement"`
	PlayerID      int64  `bun:"player_id,notnull"`
	ItemName      string `bun:"item_name,notnull"`
	Grade         string `bun:"grade,notnull,default:'common'"`
	Quantity      int    `bun:"quantity,notnull,default:1"`
	PurchasePrice int64  `bun:"purchase_price,notnull"`
	CurrentPrice  int64  `bun:"current_price,notnull"`

	Equipped bool `bun:"equipped,notnull,default:false"`
	Locked   bool `bun:"locked,notnull,default:false"`
	Favorite bool `bun:"favorite,notnull,default:false"`

	AcquiredAt time.Time `bun:"acquired_at,notnull,default:current_timestamp"`
}
