package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/seoultrader/server/server/utils"
	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/geo"
)

// Seoul bounding box. Locations outside the play area are rejected
// before they reach storage.
const (
	seoulLatMin = 37.413
	seoulLatMax = 37.715
	seoulLngMin = 126.734
	seoulLngMax = 127.269
)

const moveNotifyRadiusKM = 2.0

type locationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateLocation stores the player's reported position and pushes the
// merchants now in range.
func UpdateLocation(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body")
		}
		if req.Latitude < seoulLatMin || req.Latitude > seoulLatMax ||
			req.Longitude < seoulLngMin || req.Longitude > seoulLngMax {
			return utils.SendBadRequest(c, "location is outside the Seoul play area")
		}

		playerID := utils.PlayerID(c)
		if err := app.Players.UpdateLocation(c.Context(), playerID, req.Latitude, req.Longitude); err != nil {
			return utils.SendGameError(c, err)
		}

		nearby, err := nearbyMerchants(c, app, req.Latitude, req.Longitude, moveNotifyRadiusKM)
		if err != nil {
			return utils.SendGameError(c, err)
		}

		if app.Notifier != nil {
			app.Notifier.PlayerMoved(playerID, nearby)
		}
		return utils.SendSuccess(c, fiber.Map{
			"latitude":         req.Latitude,
			"longitude":        req.Longitude,
			"nearby_merchants": nearby,
		}, "location updated")
	}
}

// PlayersMe returns the authenticated player's profile, progression and
// inventory.
func PlayersMe(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		player, _ := c.Locals("player").(*models.Player)
		if player == nil {
			return utils.SendUnauthorized(c, "no player in context")
		}

		progress, err := app.Progress.Get(c.Context(), player.ID)
		if err != nil && !errors.Is(err, repositories.ErrProgressMissing) {
			return utils.SendGameError(c, err)
		}
		if progress == nil {
			progress = &models.CharacterProgress{
				PlayerID:     player.ID,
				Level:        1,
				Strength:     10,
				Intelligence: 10,
				Charisma:     10,
				Luck:         10,
			}
		}

		inventory, err := app.Inventory.ListForPlayer(c.Context(), player.ID)
		if err != nil {
			return utils.SendGameError(c, err)
		}

		return utils.SendSuccess(c, fiber.Map{
			"player":    player,
			"progress":  progress,
			"inventory": inventory,
		}, "")
	}
}

func nearbyMerchants(c *fiber.Ctx, app *WebApp, lat, lng, radiusKM float64) ([]NearbyMerchant, error) {
	merchants, err := app.Merchants.GetAll(c.Context())
	if err != nil {
		return nil, err
	}

	found := geo.FindNearby(lat, lng, radiusKM, merchants)
	results := make([]NearbyMerchant, len(found))
	for i, n := range found {
		results[i] = NearbyMerchant{Merchant: n.Value, DistanceKM: n.DistanceKM}
	}
	return results, nil
}
