package summary

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/auth"
)

type Handler struct {
	Repo Repo
}

// GetSummary returns income/expense/net totals, optionally for one
// YYYY-MM month via the month query parameter.
func (h *Handler) GetSummary(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	s, err := h.Repo.GetByUser(c.UserContext(), userID, c.Query("month"))
	if err != nil {
		return err
	}
	return c.JSON(s)
}
