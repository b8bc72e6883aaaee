package handlers

import (
	"github.com/gofiber/fiber/v2"
	webmodels "github.com/seoultrader/server/server/models"
	"github.com/seoultrader/server/server/utils"
)

type buyRequest struct {
	MerchantID int64  `json:"merchant_id"`
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
}

type sellRequest struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	MerchantID      int64 `json:"merchant_id"`
}

// TradeBuy executes a purchase.
func TradeBuy(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req buyRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body")
		}
		if req.MerchantID == 0 || req.ItemName == "" {
			return utils.SendBadRequest(c, "merchant_id and item_name are required")
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		result, err := app.Trades.Buy(c.Context(), utils.PlayerID(c), req.MerchantID, req.ItemName, req.Quantity)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendCreated(c, result, "trade completed")
	}
}

// TradeSell sells one inventory row back to a merchant.
func TradeSell(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req sellRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body")
		}
		if req.InventoryItemID == 0 || req.MerchantID == 0 {
			return utils.SendBadRequest(c, "inventory_item_id and merchant_id are required")
		}

		result, err := app.Trades.Sell(c.Context(), utils.PlayerID(c), req.InventoryItemID, req.MerchantID)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendCreated(c, result, "trade completed")
	}
}

// TradeHistory pages the player's trade log.
func TradeHistory(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		offset := c.QueryInt("offset", 0)

		trades, total, hasMore, err := app.Trades.History(c.Context(), utils.PlayerID(c), limit, offset)
		if err != nil {
			return utils.SendGameError(c, err)
		}

		return utils.SendPaginated(c, trades, &webmodels.PaginationInfo{
			Limit:   limit,
			Offset:  offset,
			Total:   total,
			HasMore: hasMore,
		}, "")
	}
}
