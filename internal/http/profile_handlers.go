package http

import (
	"errors"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/audit"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/auth"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
)

type ProfileHandler struct {
	DB *pgxpool.Pool
}

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

var phoneRe = regexp.MustCompile(`^[0-9]{10,15}$`)

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body updateProfileRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}
	if body.Phone != nil && *body.Phone != "" && !phoneRe.MatchString(*body.Phone) {
		return apperr.Validation("invalid phone number")
	}

	ctx := userContext(c)

	var u domain.User
	err := h.DB.QueryRow(ctx, `
UPDATE users SET
	full_name = COALESCE($2, full_name),
	phone = COALESCE($3, phone)
WHERE id = $1::uuid
RETURNING id::text, email, full_name, phone, created_at`,
		userID, body.FullName, body.Phone,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return err
	}

	_ = audit.Write(ctx, h.DB, audit.Entry{
		UserID:     &userID,
		Action:     audit.ActionProfileUpdate,
		EntityType: "user",
		EntityID:   &userID,
	})

	return c.JSON(u)
}

func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body changePasswordRequest
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid body")
	}
	if len(body.NewPassword) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}

	ctx := userContext(c)

	var currentHash string
	err := h.DB.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1::uuid`, userID).Scan(&currentHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(body.CurrentPassword)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := h.DB.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1::uuid`, userID, string(hashed)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}
