// Package server assembles the REST API on fiber.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/seoultrader/server/server/handlers"
	"github.com/seoultrader/server/server/middleware"
	"github.com/seoultrader/server/server/utils"
)

// New builds the fiber app with middleware and routes wired.
func New(webApp *handlers.WebApp, verifier middleware.Verifier) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Seoul Trader API",
		ServerHeader: "SeoulTrader",
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.LoggingMiddleware())

	setupRoutes(app, webApp, verifier)
	return app
}

func setupRoutes(app *fiber.App, webApp *handlers.WebApp, verifier middleware.Verifier) {
	app.Get("/health", handlers.HealthCheck(webApp))

	api := app.Group("/api")
	api.Use(middleware.AuthRequired(verifier, webApp.Players))

	trade := api.Group("/trade")
	trade.Post("/buy", handlers.TradeBuy(webApp))
	trade.Post("/sell", handlers.TradeSell(webApp))
	trade.Get("/history", handlers.TradeHistory(webApp))

	players := api.Group("/players")
	players.Get("/me", handlers.PlayersMe(webApp))
	players.Put("/location", handlers.UpdateLocation(webApp))

	merchants := api.Group("/merchants")
	merchants.Get("/nearby", handlers.MerchantsNearby(webApp))
	merchants.Get("/search", handlers.MerchantsSearch(webApp))
	merchants.Get("/:id", handlers.MerchantDetail(webApp))

	prog := api.Group("/progression")
	prog.Post("/stats", handlers.ProgressionSpend(webApp))
	prog.Get("/next", handlers.ProgressionNext(webApp))

	api.Get("/achievements", handlers.AchievementsList(webApp))
	api.Post("/achievements/:id/claim", handlers.AchievementsClaim(webApp))

	api.Get("/market/prices", handlers.MarketPrices(webApp))
	api.Get("/market/item", handlers.MarketItem(webApp))

	app.Use(func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "NOT_FOUND", "the requested endpoint does not exist")
	})
}
