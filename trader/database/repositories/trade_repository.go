package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/seoultrader/server/trader/database/models"
	"github.com/uptrace/bun"
)

type TradeRepository interface {
	// InsertTx appends the immutable trade record inside the trade
	// transaction. Trades are never updated.
	InsertTx(ctx context.Context, tx bun.IDB, trade *models.Trade) error
	History(ctx context.Context, playerID int64, limit, offset int) ([]*models.Trade, int, error)

	// Aggregates feeding achievement recomputation. They accept the
	// trade transaction so progress reflects the trade being committed.
	CountForPlayer(ctx context.Context, idb bun.IDB, playerID int64) (int64, error)
	SellRevenue(ctx context.Context, idb bun.IDB, playerID int64) (int64, error)
	DistinctDistricts(ctx context.Context, idb bun.IDB, playerID int64) (int64, error)
}

type tradeRepository struct {
	db *bun.DB
}

func NewTradeRepository(db *bun.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) InsertTx(ctx context.Context, tx bun.IDB, trade *models.Trade) error {
	trade.CreatedAt = time.Now()

	_, err := tx.NewInsert().Model(trade).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}
	return nil
}

func (r *tradeRepository) History(ctx context.Context, playerID int64, limit, offset int) ([]*models.Trade, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var trades []*models.Trade
	count, err := r.db.NewSelect().
		Model(&trades).
		Where("player_id = ?", playerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to load trade history: %w", err)
	}
	return trades, count, nil
}

func (r *tradeRepository) CountForPlayer(ctx context.Context, idb bun.IDB, playerID int64) (int64, error) {
	count, err := idb.NewSelect().
		Model((*models.Trade)(nil)).
		Where("player_id = ?", playerID).
		Count(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return int64(count), nil
}

func (r *tradeRepository) SellRevenue(ctx context.Context, idb bun.IDB, playerID int64) (int64, error) {
	var revenue int64
	err := idb.NewSelect().
		Model((*models.Trade)(nil)).
		ColumnExpr("COALESCE(sum(final_price), 0)").
		Where("player_id = ? AND trade_type = ?", playerID, models.TradeSell).
		Scan(ctx, &revenue)

	if err != nil {
		return 0, fmt.Errorf("failed to sum sell revenue: %w", err)
	}
	return revenue, nil
}

func (r *tradeRepository) DistinctDistricts(ctx context.Context, idb bun.IDB, playerID int64) (int64, error) {
	var count int64
	err := idb.NewSelect().
		Model((*models.Trade)(nil)).
		ColumnExpr("count(DISTINCT district)").
		Where("player_id = ?", playerID).
		Scan(ctx, &count)

	if err != nil {
		return 0, fmt.Errorf("failed to count trade districts: %w", err)
	}
	return count, nil
}
