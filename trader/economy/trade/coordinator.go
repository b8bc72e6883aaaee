// Package trade executes buys and sells as single serializable
// transactions, guarded by a process-local lock against duplicate
// submissions.
package trade

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/seoultrader/server/trader/achievements"
	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/economy/pricing"
	"github.com/seoultrader/server/trader/gameerr"
	"github.com/seoultrader/server/trader/geo"
	"github.com/seoultrader/server/trader/progression"
	"github.com/uptrace/bun"
)

// Notifier receives the post-commit signal for a completed trade. Calls
// must not block; delivery is best effort.
type Notifier interface {
	TradeCompleted(playerID int64, trade *models.Trade)
}

// ExpGranter and AchievementChecker are the in-transaction collaborators
// a trade pulls in after its mutations.
type ExpGranter interface {
	GrantTx(ctx context.Context, tx bun.IDB, playerID, amount int64) (*progression.Report, error)
}

type AchievementChecker interface {
	CheckTx(ctx context.Context, tx bun.IDB, playerID int64) ([]achievements.Completed, error)
}

// Result is the outcome of one committed trade.
type Result struct {
	Trade       *models.Trade            `json:"trade"`
	NewBalance  int64                    `json:"new_balance"`
	Progression *progression.Report      `json:"progression"`
	Completed   []achievements.Completed `json:"completed_achievements,omitempty"`
}

type Coordinator struct {
	db            *bun.DB
	locks         *LockTable
	pricing       *pricing.Calculator
	players       repositories.PlayerRepository
	inventory     repositories.InventoryRepository
	merchants     repositories.MerchantRepository
	trades        repositories.TradeRepository
	relationships repositories.RelationshipRepository
	exp           ExpGranter
	achievements  AchievementChecker
	notifier      Notifier
}

func NewCoordinator(
	db *bun.DB,
	locks *LockTable,
	calc *pricing.Calculator,
	players repositories.PlayerRepository,
	inventory repositories.InventoryRepository,
	merchants repositories.MerchantRepository,
	trades repositories.TradeRepository,
	relationships repositories.RelationshipRepository,
	exp ExpGranter,
	achievements AchievementChecker,
	notifier Notifier,
) *Coordinator {
	return &Coordinator{
		db:            db,
		locks:         locks,
		pricing:       calc,
		players:       players,
		inventory:     inventory,
		merchants:     merchants,
		trades:        trades,
		relationships: relationships,
		exp:           exp,
		achievements:  achievements,
		notifier:      notifier,
	}
}

// Buy purchases qty units of one item from a merchant. All checks and
// mutations run inside one serializable transaction; on any failure
// nothing persists.
func (c *Coordinator) Buy(ctx context.Context, playerID, merchantID int64, itemName string, qty int) (*Result, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}

	release, ok := c.locks.Acquire(buyLockKey(playerID, merchantID, itemName))
	if !ok {
		return nil, gameerr.Conflict("an identical trade is already in progress")
	}
	defer release()

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, gameerr.Internal(fmt.Errorf("failed to begin trade transaction: %w", err))
	}
	defer tx.Rollback()

	player, err := c.players.GetForUpdate(ctx, tx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, gameerr.NotFound("player %d", playerID)
		}
		return nil, gameerr.Internal(err)
	}

	merchant, err := c.merchants.GetByIDTx(ctx, tx, merchantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			return nil, gameerr.NotFound("merchant %d", merchantID)
		}
		return nil, gameerr.Internal(err)
	}

	if err := validateLicense(player.License, merchant.RequiredLicense); err != nil {
		return nil, err
	}

	stock, err := c.merchants.GetStockForUpdate(ctx, tx, merchantID, itemName)
	if err != nil {
		if errors.Is(err, repositories.ErrStockNotFound) {
			return nil, gameerr.NotFound("merchant %d does not stock %q", merchantID, itemName)
		}
		return nil, gameerr.Internal(err)
	}
	if stock.Quantity < qty {
		return nil, gameerr.Precondition("only %d of %q in stock", stock.Quantity, itemName)
	}

	rows, err := c.inventory.CountForPlayer(ctx, tx, playerID)
	if err != nil {
		return nil, gameerr.Internal(err)
	}
	if err := validateCapacity(rows, qty, player.MaxInventory); err != nil {
		return nil, err
	}

	now := time.Now()
	quote := c.pricing.QuoteBuy(stock.UnitPrice, stock.Grade, merchant.District, now)

	discount := 0.0
	if rel, err := c.relationships.Get(ctx, tx, playerID, merchantID); err != nil {
		return nil, gameerr.Internal(err)
	} else if rel != nil {
		discount = models.DiscountRate(rel.Status())
	}

	total := int64(math.Floor(float64(quote.Price) * float64(qty) * (1 - discount)))

	if err := validateFunds(player.Money, total); err != nil {
		return nil, err
	}

	dist := geo.DistanceP(player.Latitude, player.Longitude, &merchant.Latitude, &merchant.Longitude)
	if err := validateDistance(dist); err != nil {
		return nil, err
	}

	if err := c.players.ApplyTradeTx(ctx, tx, playerID, -total, buyTrust); err != nil {
		return nil, gameerr.Internal(err)
	}

	item := &models.InventoryItem{
		PlayerID:      playerID,
		ItemName:      itemName,
		Grade:         stock.Grade,
		Quantity:      qty,
		PurchasePrice: quote.Price,
		CurrentPrice:  quote.Price,
	}
	if err := c.inventory.InsertTx(ctx, tx, item); err != nil {
		return nil, gameerr.Internal(err)
	}

	if err := c.merchants.DecrementStockTx(ctx, tx, stock.ID, qty); err != nil {
		if errors.Is(err, repositories.ErrOutOfStock) {
			return nil, gameerr.Precondition("only %d of %q in stock", stock.Quantity, itemName)
		}
		return nil, gameerr.Internal(err)
	}

	if err := c.relationships.BumpTx(ctx, tx, playerID, merchantID, buyFriendship, total); err != nil {
		return nil, gameerr.Internal(err)
	}

	exp := buyExp(total)
	trade := &models.Trade{
		TradeID:        uuid.NewString(),
		PlayerID:       playerID,
		MerchantID:     merchantID,
		ItemName:       itemName,
		Grade:          stock.Grade,
		Quantity:       qty,
		TradeType:      models.TradeBuy,
		BasePrice:      stock.UnitPrice,
		FinalPrice:     total,
		DistrictFactor: quote.DistrictFactor,
		TimeFactor:     quote.TimeFactor,
		GradeFactor:    quote.GradeFactor,
		DiscountRate:   discount,
		District:       merchant.District,
		Latitude:       player.Latitude,
		Longitude:      player.Longitude,
		ExpGained:      int(exp),
		TrustGained:    buyTrust,
	}
	if err := c.trades.InsertTx(ctx, tx, trade); err != nil {
		return nil, gameerr.Internal(err)
	}

	report, err := c.exp.GrantTx(ctx, tx, playerID, exp)
	if err != nil {
		return nil, err
	}

	completed, err := c.achievements.CheckTx(ctx, tx, playerID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, gameerr.Internal(fmt.Errorf("failed to commit trade: %w", err))
	}

	c.logTrade(trade, dist)
	if c.notifier != nil {
		c.notifier.TradeCompleted(playerID, trade)
	}

	return &Result{
		Trade:       trade,
		NewBalance:  player.Money - total,
		Progression: report,
		Completed:   completed,
	}, nil
}

// Sell sells one owned inventory row back to a merchant. Ownership of
// the row is a hard precondition; the whole row is sold.
func (c *Coordinator) Sell(ctx context.Context, playerID, inventoryItemID, merchantID int64) (*Result, error) {
	release, ok := c.locks.Acquire(sellLockKey(playerID, merchantID, inventoryItemID))
	if !ok {
		return nil, gameerr.Conflict("an identical trade is already in progress")
	}
	defer release()

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, gameerr.Internal(fmt.Errorf("failed to begin trade transaction: %w", err))
	}
	defer tx.Rollback()

	player, err := c.players.GetForUpdate(ctx, tx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, gameerr.NotFound("player %d", playerID)
		}
		return nil, gameerr.Internal(err)
	}

	item, err := c.inventory.GetOwnedForUpdate(ctx, tx, inventoryItemID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrItemNotFound) {
			return nil, gameerr.NotFound("inventory item %d", inventoryItemID)
		}
		return nil, gameerr.Internal(err)
	}

	merchant, err := c.merchants.GetByIDTx(ctx, tx, merchantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			return nil, gameerr.NotFound("merchant %d", merchantID)
		}
		return nil, gameerr.Internal(err)
	}

	if err := validateLicense(player.License, merchant.RequiredLicense); err != nil {
		return nil, err
	}

	dist := geo.DistanceP(player.Latitude, player.Longitude, &merchant.Latitude, &merchant.Longitude)
	if err := validateDistance(dist); err != nil {
		return nil, err
	}

	unitPrice := c.pricing.QuoteSell(item.CurrentPrice, merchant.District)
	total := unitPrice * int64(item.Quantity)

	if err := c.players.ApplyTradeTx(ctx, tx, playerID, total, sellTrust); err != nil {
		return nil, gameerr.Internal(err)
	}

	if err := c.inventory.DeleteTx(ctx, tx, item.ID); err != nil {
		return nil, gameerr.Internal(err)
	}

	if err := c.relationships.BumpTx(ctx, tx, playerID, merchantID, sellFriendship, 0); err != nil {
		return nil, gameerr.Internal(err)
	}

	exp := sellExp(total)
	trade := &models.Trade{
		TradeID:        uuid.NewString(),
		PlayerID:       playerID,
		MerchantID:     merchantID,
		ItemName:       item.ItemName,
		Grade:          item.Grade,
		Quantity:       item.Quantity,
		TradeType:      models.TradeSell,
		BasePrice:      item.CurrentPrice,
		FinalPrice:     total,
		DistrictFactor: 1,
		TimeFactor:     1,
		GradeFactor:    1,
		District:       merchant.District,
		Latitude:       player.Latitude,
		Longitude:      player.Longitude,
		ExpGained:      int(exp),
		TrustGained:    sellTrust,
	}
	if err := c.trades.InsertTx(ctx, tx, trade); err != nil {
		return nil, gameerr.Internal(err)
	}

	report, err := c.exp.GrantTx(ctx, tx, playerID, exp)
	if err != nil {
		return nil, err
	}

	completed, err := c.achievements.CheckTx(ctx, tx, playerID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, gameerr.Internal(fmt.Errorf("failed to commit trade: %w", err))
	}

	c.logTrade(trade, dist)
	if c.notifier != nil {
		c.notifier.TradeCompleted(playerID, trade)
	}

	return &Result{
		Trade:       trade,
		NewBalance:  player.Money + total,
		Progression: report,
		Completed:   completed,
	}, nil
}

// History pages the player's trade log, newest first.
func (c *Coordinator) History(ctx context.Context, playerID int64, limit, offset int) ([]*models.Trade, int, bool, error) {
	trades, total, err := c.trades.History(ctx, playerID, limit, offset)
	if err != nil {
		return nil, 0, false, gameerr.Internal(err)
	}
	hasMore := offset+len(trades) < total
	return trades, total, hasMore, nil
}

func (c *Coordinator) logTrade(trade *models.Trade, distanceKM float64) {
	slog.Info("Trade completed",
		slog.String("type", "trade"),
		slog.String("trade_id", trade.TradeID),
		slog.String("kind", string(trade.TradeType)),
		slog.Int64("player_id", trade.PlayerID),
		slog.Int64("merchant_id", trade.MerchantID),
		slog.String("item", trade.ItemName),
		slog.Int("quantity", trade.Quantity),
		slog.Int64("price", trade.FinalPrice),
		slog.String("district", trade.District),
		slog.Float64("distance_km", distanceKM))
}
