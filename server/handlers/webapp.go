// Package handlers holds the REST endpoints. Each handler is a factory
// over the shared WebApp so routes stay declarative.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	webmodels "github.com/seoultrader/server/server/models"
	"github.com/seoultrader/server/server/utils"
	"github.com/seoultrader/server/trader"
	"github.com/seoultrader/server/trader/achievements"
	"github.com/seoultrader/server/trader/database"
	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/economy/pricing"
	"github.com/seoultrader/server/trader/economy/trade"
	"github.com/seoultrader/server/trader/progression"
	"github.com/seoultrader/server/trader/services"
)

// MoveNotifier receives the post-update signal for a player location
// change. Calls must not block.
type MoveNotifier interface {
	PlayerMoved(playerID int64, nearby []NearbyMerchant)
}

// NearbyMerchant is the wire shape for proximity results.
type NearbyMerchant struct {
	Merchant   *models.Merchant `json:"merchant"`
	DistanceKM float64          `json:"distance_km"`
}

// WebApp carries every dependency the handlers share.
type WebApp struct {
	Config       *trader.Config
	DB           *database.DB
	Players      repositories.PlayerRepository
	Inventory    repositories.InventoryRepository
	Merchants    repositories.MerchantRepository
	Market       repositories.MarketRepository
	Progress     repositories.ProgressRepository
	Pricing      *pricing.Calculator
	Trades       *trade.Coordinator
	Progression  *progression.Service
	Achievements *achievements.Service
	Search       *services.MerchantSearch
	Notifier     MoveNotifier
	Version      string
}

// HealthCheck reports server and database health.
func HealthCheck(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(app.Version)

		if err := app.DB.Ping(c.Context()); err != nil {
			health.AddComponent("database", "unhealthy", err.Error())
		} else {
			health.AddComponent("database", "healthy", "")
		}

		status := fiber.StatusOK
		if health.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return utils.SendJSON(c, status, health)
	}
}
