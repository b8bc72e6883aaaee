package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/seoultrader/server/server/utils"
	"github.com/seoultrader/server/trader/progression"
)

type spendRequest struct {
	Stats  *progression.StatAllocation  `json:"stats"`
	Skills *progression.SkillAllocation `json:"skills"`
}

// ProgressionSpend allocates unspent stat or skill points.
func ProgressionSpend(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req spendRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body")
		}
		if req.Stats == nil && req.Skills == nil {
			return utils.SendBadRequest(c, "nothing to allocate")
		}

		playerID := utils.PlayerID(c)
		var result interface{}

		if req.Stats != nil {
			cp, err := app.Progression.SpendStatPoints(c.Context(), playerID, *req.Stats)
			if err != nil {
				return utils.SendGameError(c, err)
			}
			result = cp
		}
		if req.Skills != nil {
			cp, err := app.Progression.SpendSkillPoints(c.Context(), playerID, *req.Skills)
			if err != nil {
				return utils.SendGameError(c, err)
			}
			result = cp
		}
		return utils.SendSuccess(c, result, "points allocated")
	}
}

// ProgressionNext previews the next level threshold, or an arbitrary
// target level when ?target= is given.
func ProgressionNext(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if target := c.QueryInt("target", 0); target > 0 {
			threshold, err := app.Progression.PreviewLevel(c.Context(), utils.PlayerID(c), target)
			if err != nil {
				switch {
				case errors.Is(err, progression.ErrMaxLevel):
					return utils.SendBadRequest(c, "target level is beyond the catalog")
				case errors.Is(err, progression.ErrInsufficientExp):
					return utils.SendSuccess(c, fiber.Map{"target": target, "reachable": false}, "")
				}
				return utils.SendGameError(c, err)
			}
			return utils.SendSuccess(c, fiber.Map{
				"target":       threshold.Level,
				"reachable":    true,
				"required_exp": threshold.RequiredExp,
			}, "")
		}

		threshold, remaining, err := app.Progression.NextThreshold(c.Context(), utils.PlayerID(c))
		if err != nil {
			if errors.Is(err, progression.ErrMaxLevel) {
				return utils.SendSuccess(c, fiber.Map{"max_level": true}, "")
			}
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{
			"next_level":    threshold.Level,
			"required_exp":  threshold.RequiredExp,
			"remaining_exp": remaining,
		}, "")
	}
}
