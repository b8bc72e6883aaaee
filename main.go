package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seoultrader/server/server"
	"github.com/seoultrader/server/server/handlers"
	"github.com/seoultrader/server/server/middleware"
	"github.com/seoultrader/server/server/ws"
	"github.com/seoultrader/server/trader"
	"github.com/seoultrader/server/trader/logger"
)

// realtimeSink is everything the game core and the handlers push into
// the realtime layer. Both the hub and the headless log notifier
// satisfy it.
type realtimeSink interface {
	trader.RealtimeNotifier
	handlers.MoveNotifier
}

var (
	version = "dev"
	commit  = "unknown"

	shouldSyncSchema = flag.Bool("sync-schema", true, "create missing tables and seed static catalogs on startup")
	configPath       = flag.String("config", "config.toml", "path to the config file")
)

func main() {
	flag.Parse()

	cfg, err := trader.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	handler := logger.NewHandler("SeoulTrader").WithLevel(cfg.Log.Level)
	slog.SetDefault(slog.New(handler))

	logger.LogSystem("Starting Seoul Trader server",
		slog.String("version", version),
		slog.String("commit", commit))

	hub := ws.NewHub()
	var notifier realtimeSink = hub
	if cfg.Realtime.Disabled {
		notifier = ws.LogNotifier{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := trader.NewApp(ctx, cfg, notifier)
	cancel()
	if err != nil {
		logger.LogError("Failed to build application", err)
		os.Exit(1)
	}
	defer app.Close()

	if *shouldSyncSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := app.DB.InitializeSchema(ctx)
		cancel()
		if err != nil {
			logger.LogError("Failed to initialize schema", err)
			os.Exit(1)
		}
	}

	app.StartBackground()
	if !cfg.Realtime.Disabled {
		app.Runner.Schedule("hub", "realtime event fan-out", hub.Run)
	}

	webApp := &handlers.WebApp{
		Config:       cfg,
		DB:           app.DB,
		Players:      app.Players,
		Inventory:    app.Inventory,
		Merchants:    app.Merchants,
		Market:       app.Market,
		Progress:     app.Progress,
		Pricing:      app.Pricing,
		Trades:       app.Coordinator,
		Progression:  app.Progression,
		Achievements: app.Achievements,
		Search:       app.Search,
		Notifier:     notifier,
		Version:      version,
	}

	verifier := middleware.NewTokenMapVerifier(cfg.Auth)
	api := server.New(webApp, verifier)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		address := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
		logger.LogSystem("API listening", slog.String("address", address))
		return api.Listen(address)
	})

	if !cfg.Realtime.Disabled {
		g.Go(func() error {
			address := fmt.Sprintf("%s:%d", cfg.Realtime.Host, cfg.Realtime.Port)
			return hub.Listen(gctx, address)
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := api.ShutdownWithContext(shutdownCtx); err != nil {
			logger.LogError("API shutdown error", err)
		}
		return app.Runner.Shutdown(10 * time.Second)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.LogError("Server exited with error", err)
		os.Exit(1)
	}
	logger.LogSystem("Shutdown complete")
}
