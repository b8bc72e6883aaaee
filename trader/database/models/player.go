package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID           int64  `bun:"id,pk,autoincrement"`
	UserID       int64  `bun:"user_id,notnull,unique"`
	Name         string `bun:"name,notnull"`
	Money        int64  `bun:"money,notnull,default:0"`
	Trust        int    `bun:"trust,notnull,default:0"`
	License      int    `bun:"license,notnull,default:1"`
	MaxInventory int    `bun:"max_inventory,notnull,default:50"`

	// Last reported location. Nil until the first location update; the
	// distance gate treats a missing location as infinitely far away.
	Latitude  *float64 `bun:"latitude"`
	Longitude *float64 `bun:"longitude"`

	// Cosmetic grants from achievement rewards.
	Titles []string `bun:"titles,type:jsonb"`

	LastActive time.Time `bun:"last_active,notnull,default:current_timestamp"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type CharacterProgress struct {
	bun.BaseModel `bun:"table:character_progress,alias:cp"`

	ID       int64 `bun:"id,pk,autoincrement"`
	PlayerID int64 `bun:"player_id,notnull,unique"`
	Level    int   `bun:"level,notnull,default:1"`
	Exp      int64 `bun:"exp,notnull,default:0"`

	StatPoints  int `bun:"stat_points,notnull,default:0"`
	SkillPoints int `bun:"skill_points,notnull,default:0"`

	Strength     int `bun:"strength,notnull,default:10"`
	Intelligence int `bun:"intelligence,notnull,default:10"`
	Charisma     int `bun:"charisma,notnull,default:10"`
	Luck         int `bun:"luck,notnull,default:10"`

	TradingSkill     int `bun:"trading_skill,notnull,default:0"`
	NegotiationSkill int `bun:"negotiation_skill,notnull,default:0"`
	AppraisalSkill   int `bun:"appraisal_skill,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// StatTotal is the sum of the four base stats, used by achievement
// progress recomputation.
func (cp *CharacterProgress) StatTotal() int {
	return cp.Strength + cp.Intelligence + cp.Charisma + cp.Luck
}

// LevelThreshold is the static level catalog: cumulative experience
// required to reach Level, and the point rewards granted on crossing it.
type LevelThreshold struct {
	bun.BaseModel `bun:"table:level_thresholds,alias:lt"`

	ID          int64 `bun:"id,pk,autoincrement"`
	Level       int   `bun:"level,notnull,unique"`
	RequiredExp int64 `bun:"required_exp,notnull"`
	StatPoints  int   `bun:"stat_points,notnull,default:0"`
	SkillPoints int   `bun:"skill_points,notnull,default:0"`
}
