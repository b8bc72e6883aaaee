package models

import (
	"time"

	"github.com/uptrace/bun"
)

type RelationshipStatus string

const (
	StatusStranger     RelationshipStatus = "stranger"
	StatusAcquaintance RelationshipStatus = "acquaintance"
	StatusFriend       RelationshipStatus = "friend"
	StatusCloseFriend  RelationshipStatus = "close_friend"
	StatusBestFriend   RelationshipStatus = "best_friend"
)

// MaxFriendshipPoints caps accumulation; points never decrease.
const MaxFriendshipPoints = 1000

// FriendThreshold is the friendship level at which a merchant counts as
// a friend for achievement purposes.
const FriendThreshold = 200

// Relationship tracks one player's standing with one merchant. Created
// lazily on first trade.
type Relationship struct {
	bun.BaseModel `bun:"table:relationships,alias:r"`

	ID               int64 `bun:"id,pk,autoincrement"`
	PlayerID         int64 `bun:"player_id,notnull,unique:player_merchant"`
	MerchantID       int64 `bun:"merchant_id,notnull,unique:player_merchant"`
	FriendshipPoints int   `bun:"friendship_points,notnull,default:0"`
	Reputation       int   `bun:"reputation,notnull,default:0"`
	TradeCount       int   `bun:"trade_count,notnull,default:0"`
	TotalSpent       int64 `bun:"total_spent,notnull,default:0"`

	LastTradeAt time.Time `bun:"last_trade_at,notnull,default:current_timestamp"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Status derives the relationship tier from friendship points.
// Thresholds: 0 / 50 / 200 / 500 / 800.
func (r *Relationship) Status() RelationshipStatus {
	return StatusForPoints(r.FriendshipPoints)
}

func StatusForPoints(points int) RelationshipStatus {
	switch {
	case points >= 800:
		return StatusBestFriend
	case points >= 500:
		return StatusCloseFriend
	case points >= 200:
		return StatusFriend
	case points >= 50:
		return StatusAcquaintance
	default:
		return StatusStranger
	}
}

// DiscountRate is the negotiation discount a relationship tier earns on
// purchases. Zero below friend tier.
func DiscountRate(status RelationshipStatus) float64 {
	switch status {
	case StatusFriend:
		return 0.03
	case StatusCloseFriend:
		return 0.05
	case StatusBestFriend:
		return 0.07
	default:
		return 0
	}
}
