// Package achievements recomputes achievement progress from aggregate
// game state and pays out typed rewards on claim.
package achievements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/gameerr"
	"github.com/seoultrader/server/trader/progression"
	"github.com/uptrace/bun"
)

// Completed is one achievement freshly crossed by an evaluation run.
type Completed struct {
	AchievementID string            `json:"achievement_id"`
	Name          string            `json:"name"`
	RewardKind    models.RewardKind `json:"reward_kind"`
	RewardAmount  int64             `json:"reward_amount,omitempty"`
	RewardLabel   string            `json:"reward_label,omitempty"`
}

// ExpGranter issues experience for experience-kind rewards.
type ExpGranter interface {
	GrantTx(ctx context.Context, tx bun.IDB, playerID, amount int64) (*progression.Report, error)
}

type Service struct {
	db            *bun.DB
	achievements  repositories.AchievementRepository
	trades        repositories.TradeRepository
	inventory     repositories.InventoryRepository
	relationships repositories.RelationshipRepository
	progress      repositories.ProgressRepository
	players       repositories.PlayerRepository
	exp           ExpGranter
}

func NewService(
	db *bun.DB,
	achievements repositories.AchievementRepository,
	trades repositories.TradeRepository,
	inventory repositories.InventoryRepository,
	relationships repositories.RelationshipRepository,
	progress repositories.ProgressRepository,
	players repositories.PlayerRepository,
	exp ExpGranter,
) *Service {
	return &Service{
		db:            db,
		achievements:  achievements,
		trades:        trades,
		inventory:     inventory,
		relationships: relationships,
		progress:      progress,
		players:       players,
		exp:           exp,
	}
}

// CheckTx recomputes every definition's progress from aggregates inside
// the caller's transaction and returns the achievements completed by
// this run only. Already-completed rows are left untouched.
func (s *Service) CheckTx(ctx context.Context, tx bun.IDB, playerID int64) ([]Completed, error) {
	agg, err := s.collectAggregates(ctx, tx, playerID)
	if err != nil {
		return nil, err
	}

	defs, err := s.achievements.Definitions(ctx, tx)
	if err != nil {
		return nil, gameerr.Internal(err)
	}
	existing, err := s.achievements.ProgressMapTx(ctx, tx, playerID)
	if err != nil {
		return nil, gameerr.Internal(err)
	}

	now := time.Now()
	var fresh []Completed

	for _, def := range defs {
		progress, completed := evaluate(def, agg)

		row := existing[def.AchievementID]
		if row != nil && row.Progress == progress && row.Completed == completed {
			continue
		}
		alreadyCompleted := row != nil && row.Completed

		upsert := &models.AchievementProgress{
			PlayerID:      playerID,
			AchievementID: def.AchievementID,
			Progress:      progress,
			Completed:     completed || alreadyCompleted,
		}
		if completed && !alreadyCompleted {
			upsert.CompletedAt = &now
		}
		if err := s.achievements.UpsertProgressTx(ctx, tx, upsert); err != nil {
			return nil, gameerr.Internal(err)
		}

		if completed && !alreadyCompleted {
			fresh = append(fresh, Completed{
				AchievementID: def.AchievementID,
				Name:          def.Name,
				RewardKind:    def.RewardKind,
				RewardAmount:  def.RewardAmount,
				RewardLabel:   def.RewardLabel,
			})
		}
	}

	if len(fresh) > 0 {
		slog.Info("Achievements completed",
			slog.String("type", "trade"),
			slog.Int64("player_id", playerID),
			slog.Int("count", len(fresh)))
	}
	return fresh, nil
}

// Claim pays out one completed, unclaimed achievement. Runs in its own
// transaction; the progress row is locked so a double submit loses.
func (s *Service) Claim(ctx context.Context, playerID int64, achievementID string) (*models.Achievement, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, gameerr.Internal(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	def, err := s.achievements.GetDefinition(ctx, tx, achievementID)
	if err != nil {
		return nil, gameerr.NotFound("achievement %q", achievementID)
	}

	row, err := s.achievements.GetProgressForUpdate(ctx, tx, playerID, achievementID)
	if err != nil {
		if errors.Is(err, repositories.ErrProgressNotFound) {
			return nil, gameerr.NotFound("no progress for achievement %q", achievementID)
		}
		return nil, gameerr.Internal(err)
	}

	if !row.Completed {
		return nil, gameerr.Precondition("achievement %q is not completed", achievementID)
	}
	if row.Claimed {
		return nil, gameerr.Conflict("achievement %q already claimed", achievementID)
	}

	if err := s.achievements.MarkClaimedTx(ctx, tx, row.ID); err != nil {
		return nil, gameerr.Conflict("achievement %q already claimed", achievementID)
	}

	if err := s.issueReward(ctx, tx, playerID, def); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, gameerr.Internal(fmt.Errorf("failed to commit claim: %w", err))
	}

	slog.Info("Achievement reward claimed",
		slog.String("type", "trade"),
		slog.Int64("player_id", playerID),
		slog.String("achievement", achievementID),
		slog.String("reward_kind", string(def.RewardKind)))
	return def, nil
}

func (s *Service) issueReward(ctx context.Context, tx bun.IDB, playerID int64, def *models.Achievement) error {
	switch def.RewardKind {
	case models.RewardCurrency:
		if err := s.players.CreditMoneyTx(ctx, tx, playerID, def.RewardAmount); err != nil {
			return gameerr.Internal(err)
		}
	case models.RewardExperience:
		if _, err := s.exp.GrantTx(ctx, tx, playerID, def.RewardAmount); err != nil {
			return err
		}
	case models.RewardCosmetic, models.RewardTitle:
		if err := s.players.GrantTitleTx(ctx, tx, playerID, def.RewardLabel); err != nil {
			return gameerr.Internal(err)
		}
	default:
		return gameerr.Internal(fmt.Errorf("unknown reward kind %q on achievement %q", def.RewardKind, def.AchievementID))
	}
	return nil
}

// Listing is one definition paired with the player's progress,
// zero-valued for definitions the player has not touched yet.
type Listing struct {
	Achievement *models.Achievement `json:"achievement"`
	Progress    int64               `json:"progress"`
	Completed   bool                `json:"completed"`
	Claimed     bool                `json:"claimed"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// List is the read side for the achievements endpoint. Every catalog
// definition appears exactly once, in catalog order.
func (s *Service) List(ctx context.Context, playerID int64) ([]Listing, error) {
	defs, err := s.achievements.Definitions(ctx, nil)
	if err != nil {
		return nil, gameerr.Internal(err)
	}
	rows, err := s.achievements.ProgressForPlayer(ctx, playerID)
	if err != nil {
		return nil, gameerr.Internal(err)
	}

	byID := make(map[string]*models.AchievementProgress, len(rows))
	for _, row := range rows {
		byID[row.AchievementID] = row
	}

	listings := make([]Listing, len(defs))
	for i, def := range defs {
		listings[i] = Listing{Achievement: def}
		if row := byID[def.AchievementID]; row != nil {
			listings[i].Progress = row.Progress
			listings[i].Completed = row.Completed
			listings[i].Claimed = row.Claimed
			listings[i].CompletedAt = row.CompletedAt
		}
	}
	return listings, nil
}

func (s *Service) collectAggregates(ctx context.Context, tx bun.IDB, playerID int64) (Aggregates, error) {
	var agg Aggregates
	var err error

	if agg.TradeCount, err = s.trades.CountForPlayer(ctx, tx, playerID); err != nil {
		return agg, gameerr.Internal(err)
	}
	if agg.SellRevenue, err = s.trades.SellRevenue(ctx, tx, playerID); err != nil {
		return agg, gameerr.Internal(err)
	}
	if agg.DistinctDistricts, err = s.trades.DistinctDistricts(ctx, tx, playerID); err != nil {
		return agg, gameerr.Internal(err)
	}

	distinct, err := s.inventory.DistinctItemCount(ctx, tx, playerID)
	if err != nil {
		return agg, gameerr.Internal(err)
	}
	agg.DistinctItems = int64(distinct)

	if agg.MerchantFriends, err = s.relationships.CountFriends(ctx, tx, playerID, models.FriendThreshold); err != nil {
		return agg, gameerr.Internal(err)
	}

	cp, err := s.progress.GetTx(ctx, tx, playerID)
	switch {
	case err == nil:
		agg.Level = cp.Level
		agg.StatTotal = cp.StatTotal()
	case errors.Is(err, repositories.ErrProgressMissing):
		// No grants yet; level 1 with untouched base stats.
		agg.Level = 1
		agg.StatTotal = 40
	default:
		return agg, gameerr.Internal(err)
	}

	return agg, nil
}
