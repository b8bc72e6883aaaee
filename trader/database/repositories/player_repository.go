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

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int64) (*models.Player, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Player, error)
	UpdateLocation(ctx context.Context, playerID int64, lat, lng float64) error
	// GetForUpdate locks the player row for the duration of the trade
	// transaction.
	GetForUpdate(ctx context.Context, tx bun.IDB, playerID int64) (*models.Player, error)
	// ApplyTradeTx adjusts money and trust inside a trade transaction.
	ApplyTradeTx(ctx context.Context, tx bun.IDB, playerID int64, moneyDelta int64, trustDelta int) error
	CreditMoneyTx(ctx context.Context, tx bun.IDB, playerID int64, amount int64) error
	GrantTitleTx(ctx context.Context, tx bun.IDB, playerID int64, title string) error
}

type playerRepository struct {
	db *bun.DB
}

func NewPlayerRepository(db *bun.DB) PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(ctx context.Context, player *models.Player) error {
	player.CreatedAt = time.Now()
	player.UpdatedAt = time.Now()
	player.LastActive = time.Now()

	_, err := r.db.NewInsert().Model(player).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *playerRepository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	player := new(models.Player)
	err := r.db.NewSelect().
		Model(player).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (r *playerRepository) GetByUserID(ctx context.Context, userID int64) (*models.Player, error) {
	player := new(models.Player)
	err := r.db.NewSelect().
		Model(player).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by user: %w", err)
	}
	return player, nil
}

func (r *playerRepository) UpdateLocation(ctx context.Context, playerID int64, lat, lng float64) error {
	res, err := r.db.NewUpdate().
		Model((*models.Player)(nil)).
		Set("latitude = ?", lat).
		Set("longitude = ?", lng).
		Set("last_active = ?", time.Now()).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", playerID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (r *playerRepository) GetForUpdate(ctx context.Context, tx bun.IDB, playerID int64) (*models.Player, error) {
	player := new(models.Player)
	err := tx.NewSelect().
		Model(player).
		Where("id = ?", playerID).
		For("UPDATE").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to lock player: %w", err)
	}
	return player, nil
}

func (r *playerRepository) ApplyTradeTx(ctx context.Context, tx bun.IDB, playerID int64, moneyDelta int64, trustDelta int) error {
	res, err := tx.NewUpdate().
		Model((*models.Player)(nil)).
		Set("money = money + ?", moneyDelta).
		Set("trust = trust + ?", trustDelta).
		Set("last_active = ?", time.Now()).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", playerID).
		Where("money + ? >= 0", moneyDelta).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to apply trade to player: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("player balance update rejected (would go negative)")
	}
	return nil
}

func (r *playerRepository) CreditMoneyTx(ctx context.Context, tx bun.IDB, playerID int64, amount int64) error {
	_, err := tx.NewUpdate().
		Model((*models.Player)(nil)).
		Set("money = money + ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", playerID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to credit player: %w", err)
	}
	return nil
}

func (r *playerRepository) GrantTitleTx(ctx context.Context, tx bun.IDB, playerID int64, title string) error {
	_, err := tx.NewUpdate().
		Model((*models.Player)(nil)).
		Set("titles = COALESCE(titles, '[]'::jsonb) || to_jsonb(?::text)", title).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", playerID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to grant title: %w", err)
	}
	return nil
}
