package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/seoultrader/server/server/utils"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/gameerr"
)

// MarketPrices returns the standing city-wide price table.
func MarketPrices(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		prices, err := app.Market.Prices(c.Context())
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, prices, "")
	}
}

// MarketItem returns one catalog item with its standing price, if the
// scheduler has priced it yet. The name arrives as a query parameter
// because item names are Korean.
func MarketItem(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Query("name")
		if name == "" {
			return utils.SendBadRequest(c, "name is required")
		}

		item, err := app.Market.GetItem(c.Context(), name)
		if err != nil {
			if errors.Is(err, repositories.ErrCatalogItemNotFound) {
				return utils.SendGameError(c, gameerr.NotFound("item %q", name))
			}
			return utils.SendGameError(c, err)
		}

		price, err := app.Market.GetPrice(c.Context(), name)
		if err != nil {
			return utils.SendGameError(c, err)
		}

		return utils.SendSuccess(c, fiber.Map{
			"item":  item,
			"price": price,
		}, "")
	}
}
