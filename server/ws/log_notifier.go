package ws

import (
	"log/slog"

	"github.com/seoultrader/server/server/handlers"
	"github.com/seoultrader/server/trader/database/models"
)

// LogNotifier satisfies the notifier interfaces without a hub. Used by
// tests and headless runs.
type LogNotifier struct{}

func (LogNotifier) TradeCompleted(playerID int64, trade *models.Trade) {
	slog.Debug("Trade notification",
		slog.String("type", "trade"),
		slog.Int64("player_id", playerID),
		slog.String("trade_id", trade.TradeID))
}

func (LogNotifier) PricesUpdated(prices []*models.MarketPrice) {
	slog.Debug("Price notification",
		slog.String("type", "system"),
		slog.Int("items", len(prices)))
}

func (LogNotifier) PlayerMoved(playerID int64, nearby []handlers.NearbyMerchant) {
	slog.Debug("Movement notification",
		slog.String("type", "system"),
		slog.Int64("player_id", playerID),
		slog.Int("nearby", len(nearby)))
}
