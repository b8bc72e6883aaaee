// Package progression owns character experience, levels and point
// spending. Experience grants run inside the caller's trade transaction
// so a trade and its level-up commit or roll back together.
package progression

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/gameerr"
	"github.com/uptrace/bun"
)

// Report describes the outcome of one experience grant.
type Report struct {
	Granted  int64 `json:"granted"`
	TotalExp int64 `json:"total_exp"`
	Leveled  bool  `json:"leveled"`
	OldLevel int   `json:"old_level"`
	NewLevel int   `json:"new_level"`

	StatPointsGained  int `json:"stat_points_gained"`
	SkillPointsGained int `json:"skill_points_gained"`
}

// StatAllocation is a point-spend request over the four base stats.
type StatAllocation struct {
	Strength     int `json:"strength"`
	Intelligence int `json:"intelligence"`
	Charisma     int `json:"charisma"`
	Luck         int `json:"luck"`
}

func (a StatAllocation) total() int {
	return a.Strength + a.Intelligence + a.Charisma + a.Luck
}

func (a StatAllocation) hasNegative() bool {
	return a.Strength < 0 || a.Intelligence < 0 || a.Charisma < 0 || a.Luck < 0
}

// SkillAllocation is a point-spend request over the three skills.
type SkillAllocation struct {
	Trading     int `json:"trading"`
	Negotiation int `json:"negotiation"`
	Appraisal   int `json:"appraisal"`
}

func (a SkillAllocation) total() int {
	return a.Trading + a.Negotiation + a.Appraisal
}

func (a SkillAllocation) hasNegative() bool {
	return a.Trading < 0 || a.Negotiation < 0 || a.Appraisal < 0
}

type Service struct {
	db       *bun.DB
	progress repositories.ProgressRepository
}

func NewService(db *bun.DB, progress repositories.ProgressRepository) *Service {
	return &Service{db: db, progress: progress}
}

// GrantTx adds experience inside the caller's transaction, resolving any
// level-ups the new total supports. The progress row is created lazily
// at level 1 on first grant.
func (s *Service) GrantTx(ctx context.Context, tx bun.IDB, playerID, amount int64) (*Report, error) {
	if amount <= 0 {
		return nil, gameerr.Precondition("experience grant must be positive, got %d", amount)
	}

	if err := s.progress.EnsureTx(ctx, tx, playerID); err != nil {
		return nil, gameerr.Internal(err)
	}
	cp, err := s.progress.GetForUpdateTx(ctx, tx, playerID)
	if err != nil {
		return nil, gameerr.Internal(err)
	}

	thresholds, err := s.progress.Thresholds(ctx, tx)
	if err != nil {
		return nil, gameerr.Internal(err)
	}

	report := &Report{
		Granted:  amount,
		OldLevel: cp.Level,
	}

	cp.Exp += amount
	newLevel, statGain, skillGain := resolveLevelUps(cp.Level, cp.Exp, thresholds)
	if newLevel > cp.Level {
		report.Leveled = true
		report.StatPointsGained = statGain
		report.SkillPointsGained = skillGain
		cp.Level = newLevel
		cp.StatPoints += statGain
		cp.SkillPoints += skillGain
	}
	report.NewLevel = cp.Level
	report.TotalExp = cp.Exp

	if err := s.progress.UpdateTx(ctx, tx, cp); err != nil {
		return nil, gameerr.Internal(err)
	}

	if report.Leveled {
		slog.Info("Player leveled up",
			slog.String("type", "trade"),
			slog.Int64("player_id", playerID),
			slog.Int("old_level", report.OldLevel),
			slog.Int("new_level", report.NewLevel))
	}
	return report, nil
}

// SpendStatPoints allocates unspent stat points. Decreases are rejected;
// stats only ever grow.
func (s *Service) SpendStatPoints(ctx context.Context, playerID int64, alloc StatAllocation) (*models.CharacterProgress, error) {
	if alloc.hasNegative() {
		return nil, gameerr.Precondition("stat points cannot be removed")
	}
	if alloc.total() == 0 {
		return nil, gameerr.Precondition("no points allocated")
	}

	var result *models.CharacterProgress
	err := s.inTx(ctx, func(tx bun.Tx) error {
		cp, err := s.progress.GetForUpdateTx(ctx, tx, playerID)
		if err != nil {
			if err == repositories.ErrProgressMissing {
				return gameerr.NotFound("character progress for player %d", playerID)
			}
			return gameerr.Internal(err)
		}

		if spend := alloc.total(); spend > cp.StatPoints {
			return gameerr.Precondition("allocating %d stat points with only %d unspent", spend, cp.StatPoints)
		}

		cp.Strength += alloc.Strength
		cp.Intelligence += alloc.Intelligence
		cp.Charisma += alloc.Charisma
		cp.Luck += alloc.Luck
		cp.StatPoints -= alloc.total()

		if err := s.progress.UpdateTx(ctx, tx, cp); err != nil {
			return gameerr.Internal(err)
		}
		result = cp
		return nil
	})
	return result, err
}

// SpendSkillPoints allocates unspent skill points, with the same rules
// as stat spending.
func (s *Service) SpendSkillPoints(ctx context.Context, playerID int64, alloc SkillAllocation) (*models.CharacterProgress, error) {
	if alloc.hasNegative() {
		return nil, gameerr.Precondition("skill points cannot be removed")
	}
	if alloc.total() == 0 {
		return nil, gameerr.Precondition("no points allocated")
	}

	var result *models.CharacterProgress
	err := s.inTx(ctx, func(tx bun.Tx) error {
		cp, err := s.progress.GetForUpdateTx(ctx, tx, playerID)
		if err != nil {
			if err == repositories.ErrProgressMissing {
				return gameerr.NotFound("character progress for player %d", playerID)
			}
			return gameerr.Internal(err)
		}

		if spend := alloc.total(); spend > cp.SkillPoints {
			return gameerr.Precondition("allocating %d skill points with only %d unspent", spend, cp.SkillPoints)
		}

		cp.TradingSkill += alloc.Trading
		cp.NegotiationSkill += alloc.Negotiation
		cp.AppraisalSkill += alloc.Appraisal
		cp.SkillPoints -= alloc.total()

		if err := s.progress.UpdateTx(ctx, tx, cp); err != nil {
			return gameerr.Internal(err)
		}
		result = cp
		return nil
	})
	return result, err
}

// NextThreshold returns the catalog row for the player's next level and
// the experience still missing. ErrMaxLevel at the catalog end.
func (s *Service) NextThreshold(ctx context.Context, playerID int64) (*models.LevelThreshold, int64, error) {
	cp, err := s.progress.Get(ctx, playerID)
	if err != nil {
		if err == repositories.ErrProgressMissing {
			cp = &models.CharacterProgress{Level: 1}
		} else {
			return nil, 0, gameerr.Internal(err)
		}
	}

	thresholds, err := s.progress.Thresholds(ctx, nil)
	if err != nil {
		return nil, 0, gameerr.Internal(err)
	}

	th, err := nextThreshold(thresholds, cp.Level)
	if err != nil {
		return nil, 0, err
	}

	remaining := th.RequiredExp - cp.Exp
	if remaining < 0 {
		remaining = 0
	}
	return th, remaining, nil
}

// PreviewLevel checks whether accumulated experience already covers the
// catalog row for target. ErrMaxLevel and ErrInsufficientExp pass
// through for the caller to map.
func (s *Service) PreviewLevel(ctx context.Context, playerID int64, target int) (*models.LevelThreshold, error) {
	cp, err := s.progress.Get(ctx, playerID)
	if err != nil {
		if err == repositories.ErrProgressMissing {
			cp = &models.CharacterProgress{Level: 1}
		} else {
			return nil, gameerr.Internal(err)
		}
	}

	thresholds, err := s.progress.Thresholds(ctx, nil)
	if err != nil {
		return nil, gameerr.Internal(err)
	}
	return AdvanceTo(thresholds, cp.Exp, target)
}

func (s *Service) inTx(ctx context.Context, fn func(tx bun.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return gameerr.Internal(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return gameerr.Internal(fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}
