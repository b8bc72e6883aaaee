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

var ErrCatalogItemNotFound = errors.New("catalog item not found")

type MarketRepository interface {
	Items(ctx context.Context) ([]*models.Item, error)
	GetItem(ctx context.Context, name string) (*models.Item, error)
	Prices(ctx context.Context) ([]*models.MarketPrice, error)
	// GetPrice returns the standing price row, or nil before the first
	// scheduler pass has priced the item.
	GetPrice(ctx context.Context, name string) (*models.MarketPrice, error)
	// UpsertPrice writes the recomputed city-wide price for one item.
	UpsertPrice(ctx context.Context, price *models.MarketPrice) error
}

type marketRepository struct {
	db *bun.DB
}

func NewMarketRepository(db *bun.DB) MarketRepository {
	return &marketRepository{db: db}
}

func (r *marketRepository) Items(ctx context.Context) ([]*models.Item, error) {
	var items []*models.Item
	err := r.db.NewSelect().
		Model(&items).
		Order("name ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to load item catalog: %w", err)
	}
	return items, nil
}

func (r *marketRepository) GetItem(ctx context.Context, name string) (*models.Item, error) {
	item := new(models.Item)
	err := r.db.NewSelect().
		Model(item).
		Where("name = ?", name).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCatalogItemNotFound
		}
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	return item, nil
}

func (r *marketRepository) Prices(ctx context.Context) ([]*models.MarketPrice, error) {
	var prices []*models.MarketPrice
	err := r.db.NewSelect().
		Model(&prices).
		Order("item_name ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to load market prices: %w", err)
	}
	return prices, nil
}

func (r *marketRepository) GetPrice(ctx context.Context, name string) (*models.MarketPrice, error) {
	price := new(models.MarketPrice)
	err := r.db.NewSelect().
		Model(price).
		Where("item_name = ?", name).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get market price: %w", err)
	}
	return price, nil
}

func (r *marketRepository) UpsertPrice(ctx context.Context, price *models.MarketPrice) error {
	price.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(price).
		On("CONFLICT (item_name) DO UPDATE").
		Set("current_price = EXCLUDED.current_price").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to upsert market price: %w", err)
	}
	return nil
}
