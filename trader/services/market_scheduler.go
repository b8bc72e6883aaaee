package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/economy/pricing"
)

// PriceNotifier receives the fresh price table after a recompute. Calls
// must not block.
type PriceNotifier interface {
	PricesUpdated(prices []*models.MarketPrice)
}

// MarketScheduler periodically recomputes the city-wide market price
// table from the item catalog. Each pass is a full recompute; re-running
// is always safe.
type MarketScheduler struct {
	market   repositories.MarketRepository
	pricing  *pricing.Calculator
	notifier PriceNotifier
	interval time.Duration
}

func NewMarketScheduler(market repositories.MarketRepository, calc *pricing.Calculator, notifier PriceNotifier, interval time.Duration) *MarketScheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MarketScheduler{
		market:   market,
		pricing:  calc,
		notifier: notifier,
		interval: interval,
	}
}

// Run executes an immediate pass, then one per interval until the
// context is cancelled. Intended to be scheduled on the task runner.
func (s *MarketScheduler) Run(ctx context.Context) {
	s.recompute(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.recompute(ctx)
		}
	}
}

func (s *MarketScheduler) recompute(ctx context.Context) {
	start := time.Now()

	items, err := s.market.Items(ctx)
	if err != nil {
		slog.Error("Market recompute failed to load catalog",
			slog.String("type", "error"),
			slog.Any("error", err))
		return
	}

	now := time.Now()
	prices := make([]*models.MarketPrice, 0, len(items))
	for _, item := range items {
		price := &models.MarketPrice{
			ItemName:     item.Name,
			BasePrice:    item.BasePrice,
			CurrentPrice: s.pricing.MarketPrice(item.BasePrice, now),
		}
		if err := s.market.UpsertPrice(ctx, price); err != nil {
			slog.Error("Market price upsert failed",
				slog.String("type", "error"),
				slog.String("item", item.Name),
				slog.Any("error", err))
			continue
		}
		prices = append(prices, price)
	}

	slog.Info("Market prices recomputed",
		slog.String("type", "system"),
		slog.Int("items", len(prices)),
		slog.Duration("took", time.Since(start)))

	if s.notifier != nil && len(prices) > 0 {
		s.notifier.PricesUpdated(prices)
	}
}
