package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/seoultrader/server/server/utils"
	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/gameerr"
)

const (
	defaultNearbyRadiusKM = 2.0
	maxNearbyRadiusKM     = 10.0
)

// MerchantsNearby lists merchants within a radius of a coordinate,
// closest first.
func MerchantsNearby(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			return utils.SendBadRequest(c, "lat and lng are required")
		}

		radius := defaultNearbyRadiusKM
		if raw := c.Query("radius"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed <= 0 {
				return utils.SendBadRequest(c, "radius must be a positive number")
			}
			radius = parsed
		}
		if radius > maxNearbyRadiusKM {
			radius = maxNearbyRadiusKM
		}

		nearby, err := nearbyMerchants(c, app, lat, lng, radius)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, nearby, "")
	}
}

type stockListing struct {
	Stock *models.MerchantStock `json:"stock"`
	// QuotedPrice is indicative only. The buy endpoint reprices inside
	// its transaction and may differ.
	QuotedPrice int64 `json:"quoted_price"`
}

// MerchantDetail returns one merchant with its stock lines priced for
// display.
func MerchantDetail(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return utils.SendBadRequest(c, "merchant id must be a positive integer")
		}

		merchant, err := app.Merchants.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrMerchantNotFound) {
				return utils.SendGameError(c, gameerr.NotFound("merchant %d", id))
			}
			return utils.SendGameError(c, err)
		}

		stock, err := app.Merchants.ListStock(c.Context(), merchant.ID)
		if err != nil {
			return utils.SendGameError(c, err)
		}

		now := time.Now()
		listings := make([]stockListing, len(stock))
		for i, line := range stock {
			listings[i] = stockListing{
				Stock:       line,
				QuotedPrice: app.Pricing.CachedQuote(line.ItemName, line.UnitPrice, line.Grade, merchant.District, now),
			}
		}

		return utils.SendSuccess(c, fiber.Map{
			"merchant": merchant,
			"stock":    listings,
		}, "")
	}
}

// MerchantsSearch fuzzy-matches merchants by name or stocked item.
func MerchantsSearch(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		results, err := app.Search.Search(c.Context(), c.Query("q"), c.QueryInt("limit", 10))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, results, "")
	}
}
