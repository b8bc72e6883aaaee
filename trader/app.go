package trader

import (
	"context"
	"fmt"

	"github.com/seoultrader/server/trader/achievements"
	"github.com/seoultrader/server/trader/database"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/economy/pricing"
	"github.com/seoultrader/server/trader/economy/trade"
	"github.com/seoultrader/server/trader/logger"
	"github.com/seoultrader/server/trader/progression"
	"github.com/seoultrader/server/trader/services"
	"github.com/seoultrader/server/trader/tasks"
)

// RealtimeNotifier is what the game core needs from the realtime layer.
// The concrete hub lives above this package.
type RealtimeNotifier interface {
	trade.Notifier
	services.PriceNotifier
}

// App aggregates the database, repositories and services behind one
// constructor so the entrypoint only wires transport.
type App struct {
	Config *Config
	DB     *database.DB

	Players       repositories.PlayerRepository
	Inventory     repositories.InventoryRepository
	Merchants     repositories.MerchantRepository
	Trades        repositories.TradeRepository
	Relationships repositories.RelationshipRepository
	Market        repositories.MarketRepository
	Progress      repositories.ProgressRepository

	Pricing      *pricing.Calculator
	Locks        *trade.LockTable
	Coordinator  *trade.Coordinator
	Progression  *progression.Service
	Achievements *achievements.Service
	Search       *services.MerchantSearch
	Scheduler    *services.MarketScheduler
	Runner       *tasks.Runner
}

func NewApp(ctx context.Context, cfg *Config, notifier RealtimeNotifier) (*App, error) {
	db, err := database.New(ctx, database.DBConfig{
		Host:         cfg.DB.Host,
		Port:         cfg.DB.Port,
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Database:     cfg.DB.Database,
		PoolSize:     cfg.DB.PoolSize,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxLifetime:  cfg.DB.MaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	bunDB := db.BunDB()
	app := &App{
		Config:        cfg,
		DB:            db,
		Players:       repositories.NewPlayerRepository(bunDB),
		Inventory:     repositories.NewInventoryRepository(bunDB),
		Merchants:     repositories.NewMerchantRepository(bunDB),
		Trades:        repositories.NewTradeRepository(bunDB),
		Relationships: repositories.NewRelationshipRepository(bunDB),
		Market:        repositories.NewMarketRepository(bunDB),
		Progress:      repositories.NewProgressRepository(bunDB),
		Pricing:       pricing.NewCalculator(),
		Locks:         trade.NewLockTable(),
		Runner:        tasks.NewRunner(),
	}

	achievementRepo := repositories.NewAchievementRepository(bunDB)
	app.Progression = progression.NewService(bunDB, app.Progress)
	app.Achievements = achievements.NewService(
		bunDB, achievementRepo, app.Trades, app.Inventory,
		app.Relationships, app.Progress, app.Players, app.Progression)
	app.Coordinator = trade.NewCoordinator(
		bunDB, app.Locks, app.Pricing,
		app.Players, app.Inventory, app.Merchants, app.Trades, app.Relationships,
		app.Progression, app.Achievements, notifier)
	app.Search = services.NewMerchantSearch(app.Merchants)
	app.Scheduler = services.NewMarketScheduler(app.Market, app.Pricing, notifier, cfg.Market.UpdateInterval)

	return app, nil
}

// StartBackground launches the lock janitor and the market scheduler on
// the shared runner.
func (a *App) StartBackground() {
	a.Locks.StartCleanupRoutine(a.Runner.Context())
	a.Runner.Schedule("market", "periodic market price recompute", a.Scheduler.Run)
	logger.LogSystem("Background tasks started")
}

func (a *App) Close() {
	a.DB.Close()
}
