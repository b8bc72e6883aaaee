package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Achievement condition types. Progress for each is recomputed from
// authoritative aggregates, never incremented in place.
const (
	ConditionTradeCount        = "trade_count"
	ConditionSellRevenue       = "sell_revenue"
	ConditionLevel             = "level"
	ConditionStatTotal         = "stat_total"
	ConditionDistinctItems     = "distinct_items"
	ConditionDistinctDistricts = "distinct_districts"
	ConditionMerchantFriends   = "merchant_friends"
	ConditionNegotiations      = "negotiations"
)

type RewardKind string

const (
	RewardCurrency   RewardKind = "currency"
	RewardExperience RewardKind = "experience"
	RewardCosmetic   RewardKind = "cosmetic"
	RewardTitle      RewardKind = "title"
)

// Achievement is one catalog definition. The reward is a tagged variant:
// Kind selects which payload column applies.
type Achievement struct {
	bun.BaseModel `bun:"table:achievements,alias:a"`

	ID            int64  `bun:"id,pk,autoincrement"`
	AchievementID string `bun:"achievement_id,notnull,unique"`
	Name          string `bun:"name,notnull"`
	Description   string `bun:"description,notnull"`
	ConditionType string `bun:"condition_type,notnull"`
	Target        int64  `bun:"target,notnull"`

	RewardKind   RewardKind `bun:"reward_kind,notnull"`
	RewardAmount int64      `bun:"reward_amount,notnull,default:0"`
	RewardLabel  string     `bun:"reward_label"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// AchievementProgress is one player's progress against one definition.
// CompletedAt is set on the first crossing only; idempotent re-runs never
// overwrite it.
type AchievementProgress struct {
	bun.BaseModel `bun:"table:achievement_progress,alias:ap"`

	ID            int64  `bun:"id,pk,autoincrement"`
	PlayerID      int64  `bun:"player_id,notnull,unique:player_achievement"`
	AchievementID string `bun:"achievement_id,notnull,unique:player_achievement"`
	Progress      int64  `bun:"progress,notnull,default:0"`

	Completed   bool       `bun:"completed,notnull,default:false"`
	CompletedAt *time.Time `bun:"completed_at"`
	Claimed     bool       `bun:"claimed,notnull,default:false"`
	ClaimedAt   *time.Time `bun:"claimed_at"`

	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Achievement *Achievement `bun:"rel:has-one,join:achievement_id=achievement_id"`
}
