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

var ErrProgressNotFound = errors.New("achievement progress not found")

type AchievementRepository interface {
	Definitions(ctx context.Context, idb bun.IDB) ([]*models.Achievement, error)
	GetDefinition(ctx context.Context, idb bun.IDB, achievementID string) (*models.Achievement, error)
	ProgressForPlayer(ctx context.Context, playerID int64) ([]*models.AchievementProgress, error)
	// ProgressMapTx loads the player's progress rows keyed by achievement
	// id, inside the caller's transaction.
	ProgressMapTx(ctx context.Context, idb bun.IDB, playerID int64) (map[string]*models.AchievementProgress, error)
	// UpsertProgressTx writes recomputed progress. CompletedAt is only
	// ever set on the row's first crossing; re-runs leave it untouched.
	UpsertProgressTx(ctx context.Context, tx bun.IDB, progress *models.AchievementProgress) error
	GetProgressForUpdate(ctx context.Context, tx bun.IDB, playerID int64, achievementID string) (*models.AchievementProgress, error)
	MarkClaimedTx(ctx context.Context, tx bun.IDB, progressID int64) error
}

type achievementRepository struct {
	db *bun.DB
}

func NewAchievementRepository(db *bun.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Definitions(ctx context.Context, idb bun.IDB) ([]*models.Achievement, error) {
	if idb == nil {
		idb = r.db
	}
	var defs []*models.Achievement
	err := idb.NewSelect().
		Model(&defs).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to load achievement definitions: %w", err)
	}
	return defs, nil
}

func (r *achievementRepository) GetDefinition(ctx context.Context, idb bun.IDB, achievementID string) (*models.Achievement, error) {
	if idb == nil {
		idb = r.db
	}
	def := new(models.Achievement)
	err := idb.NewSelect().
		Model(def).
		Where("achievement_id = ?", achievementID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("unknown achievement %q", achievementID)
		}
		return nil, fmt.Errorf("failed to load achievement: %w", err)
	}
	return def, nil
}

func (r *achievementRepository) ProgressForPlayer(ctx context.Context, playerID int64) ([]*models.AchievementProgress, error) {
	var progress []*models.AchievementProgress
	err := r.db.NewSelect().
		Model(&progress).
		Relation("Achievement").
		Where("ap.player_id = ?", playerID).
		Order("ap.achievement_id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to load achievement progress: %w", err)
	}
	return progress, nil
}

func (r *achievementRepository) ProgressMapTx(ctx context.Context, idb bun.IDB, playerID int64) (map[string]*models.AchievementProgress, error) {
	var rows []*models.AchievementProgress
	err := idb.NewSelect().
		Model(&rows).
		Where("player_id = ?", playerID).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to load progress rows: %w", err)
	}

	byID := make(map[string]*models.AchievementProgress, len(rows))
	for _, row := range rows {
		byID[row.AchievementID] = row
	}
	return byID, nil
}

func (r *achievementRepository) UpsertProgressTx(ctx context.Context, tx bun.IDB, progress *models.AchievementProgress) error {
	progress.UpdatedAt = time.Now()

	_, err := tx.NewInsert().
		Model(progress).
		On("CONFLICT (player_id, achievement_id) DO UPDATE").
		Set("progress = EXCLUDED.progress").
		Set("completed = achievement_progress.completed OR EXCLUDED.completed").
		Set("completed_at = COALESCE(achievement_progress.completed_at, EXCLUDED.completed_at)").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to upsert achievement progress: %w", err)
	}
	return nil
}

func (r *achievementRepository) GetProgressForUpdate(ctx context.Context, tx bun.IDB, playerID int64, achievementID string) (*models.AchievementProgress, error) {
	progress := new(models.AchievementProgress)
	err := tx.NewSelect().
		Model(progress).
		Where("player_id = ? AND achievement_id = ?", playerID, achievementID).
		For("UPDATE").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to lock achievement progress: %w", err)
	}
	return progress, nil
}

func (r *achievementRepository) MarkClaimedTx(ctx context.Context, tx bun.IDB, progressID int64) error {
	res, err := tx.NewUpdate().
		Model((*models.AchievementProgress)(nil)).
		Set("claimed = true").
		Set("claimed_at = ?", time.Now()).
		Where("id = ?", progressID).
		Where("claimed = false").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark achievement claimed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return errors.New("achievement already claimed")
	}
	return nil
}
