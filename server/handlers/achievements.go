package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/seoultrader/server/server/utils"
)

// AchievementsList returns the player's progress across every
// definition.
func AchievementsList(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		listings, err := app.Achievements.List(c.Context(), utils.PlayerID(c))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, listings, "")
	}
}

// AchievementsClaim pays out one completed achievement.
func AchievementsClaim(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		achievementID := c.Params("id")
		if achievementID == "" {
			return utils.SendBadRequest(c, "achievement id is required")
		}

		def, err := app.Achievements.Claim(c.Context(), utils.PlayerID(c), achievementID)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{
			"achievement":   def.AchievementID,
			"reward_kind":   def.RewardKind,
			"reward_amount": def.RewardAmount,
			"reward_label":  def.RewardLabel,
		}, "reward claimed")
	}
}
