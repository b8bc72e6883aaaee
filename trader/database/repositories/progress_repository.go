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

var ErrProgressMissing = errors.New("character progress not found")

type ProgressRepository interface {
	Get(ctx context.Context, playerID int64) (*models.CharacterProgress, error)
	GetTx(ctx context.Context, idb bun.IDB, playerID int64) (*models.CharacterProgress, error)
	// EnsureTx lazily creates the progress row at level 1 if absent. Safe
	// against races; the unique player_id constraint absorbs duplicates.
	EnsureTx(ctx context.Context, tx bun.IDB, playerID int64) error
	GetForUpdateTx(ctx context.Context, tx bun.IDB, playerID int64) (*models.CharacterProgress, error)
	UpdateTx(ctx context.Context, tx bun.IDB, progress *models.CharacterProgress) error
	Thresholds(ctx context.Context, idb bun.IDB) ([]*models.LevelThreshold, error)
}

type progressRepository struct {
	db *bun.DB
}

func NewProgressRepository(db *bun.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, playerID int64) (*models.CharacterProgress, error) {
	return r.GetTx(ctx, r.db, playerID)
}

func (r *progressRepository) GetTx(ctx context.Context, idb bun.IDB, playerID int64) (*models.CharacterProgress, error) {
	progress := new(models.CharacterProgress)
	err := idb.NewSelect().
		Model(progress).
		Where("player_id = ?", playerID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgressMissing
		}
		return nil, fmt.Errorf("failed to get character progress: %w", err)
	}
	return progress, nil
}

func (r *progressRepository) EnsureTx(ctx context.Context, tx bun.IDB, playerID int64) error {
	progress := &models.CharacterProgress{
		PlayerID:     playerID,
		Level:        1,
		Strength:     10,
		Intelligence: 10,
		Charisma:     10,
		Luck:         10,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	_, err := tx.NewInsert().
		Model(progress).
		On("CONFLICT (player_id) DO NOTHING").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to ensure character progress: %w", err)
	}
	return nil
}

func (r *progressRepository) GetForUpdateTx(ctx context.Context, tx bun.IDB, playerID int64) (*models.CharacterProgress, error) {
	progress := new(models.CharacterProgress)
	err := tx.NewSelect().
		Model(progress).
		Where("player_id = ?", playerID).
		For("UPDATE").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgressMissing
		}
		return nil, fmt.Errorf("failed to lock character progress: %w", err)
	}
	return progress, nil
}

func (r *progressRepository) UpdateTx(ctx context.Context, tx bun.IDB, progress *models.CharacterProgress) error {
	progress.UpdatedAt = time.Now()

	res, err := tx.NewUpdate().
		Model(progress).
		WherePK().
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update character progress: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrProgressMissing
	}
	return nil
}

func (r *progressRepository) Thresholds(ctx context.Context, idb bun.IDB) ([]*models.LevelThreshold, error) {
	if idb == nil {
		idb = r.db
	}
	var thresholds []*models.LevelThreshold
	err := idb.NewSelect().
		Model(&thresholds).
		Order("level ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to load level thresholds: %w", err)
	}
	return thresholds, nil
}
