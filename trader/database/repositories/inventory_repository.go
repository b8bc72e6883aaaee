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

var ErrItemNotFound = errors.New("inventory item not found")

type InventoryRepository interface {
	ListForPlayer(ctx context.Context, playerID int64) ([]*models.InventoryItem, error)
	// CountForPlayer counts inventory rows; run inside the trade
	// transaction so the capacity check sees current state.
	CountForPlayer(ctx context.Context, idb bun.IDB, playerID int64) (int, error)
	DistinctItemCount(ctx context.Context, idb bun.IDB, playerID int64) (int, error)
	InsertTx(ctx context.Context, tx bun.IDB, item *models.InventoryItem) error
	// GetOwnedForUpdate locks the row and enforces ownership: a row that
	// exists but belongs to someone else reads as not found.
	GetOwnedForUpdate(ctx context.Context, tx bun.IDB, itemID, playerID int64) (*models.InventoryItem, error)
	DeleteTx(ctx context.Context, tx bun.IDB, itemID int64) error
}

type inventoryRepository struct {
	db *bun.DB
}

func NewInventoryRepository(db *bun.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) ListForPlayer(ctx context.Context, playerID int64) ([]*models.InventoryItem, error) {
	var items []*models.InventoryItem
	err := r.db.NewSelect().
		Model(&items).
		Where("player_id = ?", playerID).
		Order("acquired_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

func (r *inventoryRepository) CountForPlayer(ctx context.Context, idb bun.IDB, playerID int64) (int, error) {
	count, err := idb.NewSelect().
		Model((*models.InventoryItem)(nil)).
		Where("player_id = ?", playerID).
		Count(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to count inventory: %w", err)
	}
	return count, nil
}

func (r *inventoryRepository) DistinctItemCount(ctx context.Context, idb bun.IDB, playerID int64) (int, error) {
	var count int
	err := idb.NewSelect().
		Model((*models.InventoryItem)(nil)).
		ColumnExpr("count(DISTINCT item_name)").
		Where("player_id = ?", playerID).
		Scan(ctx, &count)

	if err != nil {
		return 0, fmt.Errorf("failed to count distinct items: %w", err)
	}
	return count, nil
}

func (r *inventoryRepository) InsertTx(ctx context.Context, tx bun.IDB, item *models.InventoryItem) error {
	item.AcquiredAt = time.Now()

	_, err := tx.NewInsert().Model(item).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert inventory item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) GetOwnedForUpdate(ctx context.Context, tx bun.IDB, itemID, playerID int64) (*models.InventoryItem, error) {
	item := new(models.InventoryItem)
	err := tx.NewSelect().
		Model(item).
		Where("id = ? AND player_id = ?", itemID, playerID).
		For("UPDATE").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to lock inventory item: %w", err)
	}
	return item, nil
}

func (r *inventoryRepository) DeleteTx(ctx context.Context, tx bun.IDB, itemID int64) error {
	res, err := tx.NewDelete().
		Model((*models.InventoryItem)(nil)).
		Where("id = ?", itemID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrItemNotFound
	}
	return nil
}
