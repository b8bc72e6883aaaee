package utils

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/seoultrader/server/server/models"
	"github.com/seoultrader/server/trader/gameerr"
)

func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusOK, models.NewSuccessResponse(data, message))
}

func SendCreated(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusCreated, models.NewSuccessResponse(data, message))
}

func SendError(c *fiber.Ctx, statusCode int, code, message string) error {
	return SendJSON(c, statusCode, models.NewErrorResponse(code, message))
}

func SendBadRequest(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func SendUnauthorized(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func SendPaginated(c *fiber.Ctx, data interface{}, pagination *models.PaginationInfo, message string) error {
	return SendJSON(c, http.StatusOK, models.NewPaginatedResponse(data, pagination, message))
}

// SendGameError maps a classified game error onto an HTTP status. The
// reason of an internal error never leaves the process; the detail goes
// to the log only.
func SendGameError(c *fiber.Ctx, err error) error {
	kind := gameerr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case gameerr.KindNotFound:
		status = http.StatusNotFound
	case gameerr.KindPrecondition:
		status = http.StatusUnprocessableEntity
	case gameerr.KindConflict:
		status = http.StatusConflict
	}

	if !gameerr.Expected(err) {
		slog.Error("Request failed",
			slog.String("type", "error"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err))
	}

	return SendError(c, status, kind.String(), gameerr.Reason(err))
}

// PlayerID returns the authenticated player id placed by the auth
// middleware.
func PlayerID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("player_id").(int64)
	return id
}
