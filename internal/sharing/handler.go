package sharing

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/auth"
)

type Handler struct {
	Directory *Directory
}

func NewHandler(d *Directory) *Handler {
	return &Handler{Directory: d}
}

type shareRequest struct {
	// Email or full name of the user to grant access to.
	Target string `json:"target"`
}

func (h *Handler) Share(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req shareRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}

	sa, err := h.Directory.Share(c.UserContext(), c.Params("id"), userID, req.Target)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sa)
}

func (h *Handler) Unshare(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Directory.Unshare(c.UserContext(), c.Params("shareId"), userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListAccess(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Directory.ListAccess(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": items})
}
