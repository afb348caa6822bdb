package category

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/auth"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	if _, ok := auth.UserID(c); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}

	cat, err := h.Repo.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *Handler) List(c *fiber.Ctx) error {
	if _, ok := auth.UserID(c); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Repo.List(c.UserContext(), c.Query("type"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": items})
}
