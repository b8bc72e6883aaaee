package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/seoultrader/server/server/utils"
	"github.com/seoultrader/server/trader"
	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/database/repositories"
)

// Verifier maps a bearer token to a user id. Token issuance belongs to
// the external auth service; this server only checks what it is handed.
type Verifier interface {
	Verify(token string) (userID int64, ok bool)
}

// TokenMapVerifier verifies against the static token map in the config
// file.
type TokenMapVerifier struct {
	tokens map[string]int64
}

func NewTokenMapVerifier(cfg trader.AuthConfig) *TokenMapVerifier {
	return &TokenMapVerifier{tokens: cfg.Tokens}
}

func (v *TokenMapVerifier) Verify(token string) (int64, bool) {
	userID, ok := v.tokens[token]
	return userID, ok
}

// AuthRequired authenticates the request and resolves the player,
// creating one on first contact so a fresh token can play immediately.
func AuthRequired(verifier Verifier, players repositories.PlayerRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if token == "" {
			return utils.SendUnauthorized(c, "missing bearer token")
		}

		userID, ok := verifier.Verify(token)
		if !ok {
			slog.Warn("Rejected invalid token",
				slog.String("type", "api"),
				slog.String("path", c.Path()),
				slog.String("ip", c.IP()))
			return utils.SendUnauthorized(c, "invalid token")
		}

		player, err := resolvePlayer(c.Context(), players, userID)
		if err != nil {
			return utils.SendGameError(c, err)
		}

		c.Locals("player_id", player.ID)
		c.Locals("player", player)
		return c.Next()
	}
}

func resolvePlayer(ctx context.Context, players repositories.PlayerRepository, userID int64) (*models.Player, error) {
	player, err := players.GetByUserID(ctx, userID)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, err
	}

	player = &models.Player{
		UserID:       userID,
		Name:         fmt.Sprintf("Trader-%d", userID),
		Money:        10000,
		License:      1,
		MaxInventory: 50,
	}
	if err := players.Create(ctx, player); err != nil {
		// A concurrent first request may have won the insert.
		if existing, getErr := players.GetByUserID(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	slog.Info("Created player on first contact",
		slog.String("type", "api"),
		slog.Int64("user_id", userID),
		slog.Int64("player_id", player.ID))
	return player, nil
}
