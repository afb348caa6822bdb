package notify

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/auth"
)

type Handler struct {
	Settings *SettingsRepo
}

func NewHandler(settings *SettingsRepo) *Handler {
	return &Handler{Settings: settings}
}

func (h *Handler) GetSettings(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	s, err := h.Settings.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(s)
}

func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}

	s, err := h.Settings.Update(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(s)
}
