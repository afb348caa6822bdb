package journal

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/auth"
)

type Handler struct {
	Journal *Journal
}

func NewHandler(j *Journal) *Handler {
	return &Handler{Journal: j}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}

	t, err := h.Journal.Create(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	t, err := h.Journal.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}

	t, err := h.Journal.Update(c.UserContext(), userID, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Journal.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	filter := Filter{
		WalletID:   c.Query("wallet_id"),
		UserID:     c.Query("user_id"),
		Type:       c.Query("type"),
		CategoryID: c.Query("category_id"),
		Limit:      c.QueryInt("limit"),
	}
	if v := c.Query("date_from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return apperr.Validation("date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = d
	}
	if v := c.Query("date_to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return apperr.Validation("date_to must be YYYY-MM-DD")
		}
		filter.DateTo = d
	}

	items, err := h.Journal.List(c.UserContext(), userID, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": items})
}
