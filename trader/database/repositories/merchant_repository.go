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

var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrStockNotFound    = errors.New("stock line not found")
	ErrOutOfStock       = errors.New("out of stock")
)

type MerchantRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Merchant, error)
	GetByIDTx(ctx context.Context, idb bun.IDB, id int64) (*models.Merchant, error)
	GetAll(ctx context.Context) ([]*models.Merchant, error)
	ListStock(ctx context.Context, merchantID int64) ([]*models.MerchantStock, error)
	// GetStockForUpdate locks one stock line so the quantity check and
	// the decrement happen against the same row state.
	GetStockForUpdate(ctx context.Context, tx bun.IDB, merchantID int64, itemName string) (*models.MerchantStock, error)
	// DecrementStockTx decrements guarded by quantity >= qty; a
	// concurrent buyer that drained the line surfaces as ErrOutOfStock.
	DecrementStockTx(ctx context.Context, tx bun.IDB, stockID int64, qty int) error
}

type merchantRepository struct {
	db *bun.DB
}

func NewMerchantRepository(db *bun.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) GetByID(ctx context.Context, id int64) (*models.Merchant, error) {
	return r.GetByIDTx(ctx, r.db, id)
}

func (r *merchantRepository) GetByIDTx(ctx context.Context, idb bun.IDB, id int64) (*models.Merchant, error) {
	merchant := new(models.Merchant)
	err := idb.NewSelect().
		Model(merchant).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return merchant, nil
}

func (r *merchantRepository) GetAll(ctx context.Context) ([]*models.Merchant, error) {
	var merchants []*models.Merchant
	err := r.db.NewSelect().
		Model(&merchants).
		Relation("Stock").
		Order("m.id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list merchants: %w", err)
	}
	return merchants, nil
}

func (r *merchantRepository) ListStock(ctx context.Context, merchantID int64) ([]*models.MerchantStock, error) {
	var stock []*models.MerchantStock
	err := r.db.NewSelect().
		Model(&stock).
		Where("merchant_id = ?", merchantID).
		Order("item_name ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	return stock, nil
}

func (r *merchantRepository) GetStockForUpdate(ctx context.Context, tx bun.IDB, merchantID int64, itemName string) (*models.MerchantStock, error) {
	line := new(models.MerchantStock)
	err := tx.NewSelect().
		Model(line).
		Where("merchant_id = ? AND item_name = ?", merchantID, itemName).
		For("UPDATE").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStockNotFound
		}
		return nil, fmt.Errorf("failed to lock stock line: %w", err)
	}
	return line, nil
}

func (r *merchantRepository) DecrementStockTx(ctx context.Context, tx bun.IDB, stockID int64, qty int) error {
	res, err := tx.NewUpdate().
		Model((*models.MerchantStock)(nil)).
		Set("quantity = quantity - ?", qty).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", stockID).
		Where("quantity >= ?", qty).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrOutOfStock
	}
	return nil
}
