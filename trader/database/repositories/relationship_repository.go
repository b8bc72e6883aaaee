package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seoultrader/server/trader/database/models"
	"github.com/uptrace/bun"
)

type RelationshipRepository interface {
	Get(ctx context.Context, idb bun.IDB, playerID, merchantID int64) (*models.Relationship, error)
	ListForPlayer(ctx context.Context, playerID int64) ([]*models.Relationship, error)
	// BumpTx lazily creates the relationship on first trade and
	// accumulates friendship (capped), trade count and spend. Upsert so
	// two racing first trades cannot duplicate the row.
	BumpTx(ctx context.Context, tx bun.IDB, playerID, merchantID int64, friendshipDelta int, spentDelta int64) error
	CountFriends(ctx context.Context, idb bun.IDB, playerID int64, minPoints int) (int64, error)
}

type relationshipRepository struct {
	db *bun.DB
}

func NewRelationshipRepository(db *bun.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) Get(ctx context.Context, idb bun.IDB, playerID, merchantID int64) (*models.Relationship, error) {
	rel := new(models.Relationship)
	err := idb.NewSelect().
		Model(rel).
		Where("player_id = ? AND merchant_id = ?", playerID, merchantID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	return rel, nil
}

func (r *relationshipRepository) ListForPlayer(ctx context.Context, playerID int64) ([]*models.Relationship, error) {
	var rels []*models.Relationship
	err := r.db.NewSelect().
		Model(&rels).
		Where("player_id = ?", playerID).
		Order("friendship_points DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return rels, nil
}

func (r *relationshipRepository) BumpTx(ctx context.Context, tx bun.IDB, playerID, merchantID int64, friendshipDelta int, spentDelta int64) error {
	now := time.Now()
	rel := &models.Relationship{
		PlayerID:         playerID,
		MerchantID:       merchantID,
		FriendshipPoints: friendshipDelta,
		TradeCount:       1,
		TotalSpent:       spentDelta,
		LastTradeAt:      now,
		CreatedAt:        now,
	}
	if rel.FriendshipPoints > models.MaxFriendshipPoints {
		rel.FriendshipPoints = models.MaxFriendshipPoints
	}

	_, err := tx.NewInsert().
		Model(rel).
		On("CONFLICT (player_id, merchant_id) DO UPDATE").
		Set("friendship_points = LEAST(relationships.friendship_points + EXCLUDED.friendship_points, ?)", models.MaxFriendshipPoints).
		Set("trade_count = relationships.trade_count + 1").
		Set("total_spent = relationships.total_spent + EXCLUDED.total_spent").
		Set("last_trade_at = EXCLUDED.last_trade_at").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to bump relationship: %w", err)
	}
	return nil
}

func (r *relationshipRepository) CountFriends(ctx context.Context, idb bun.IDB, playerID int64, minPoints int) (int64, error) {
	count, err := idb.NewSelect().
		Model((*models.Relationship)(nil)).
		Where("player_id = ? AND friendship_points >= ?", playerID, minPoints).
		Count(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to count merchant friends: %w", err)
	}
	return int64(count), nil
}
