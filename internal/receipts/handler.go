package receipts

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/access"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/auth"
)

type Handler struct {
	Store *Store
	DB    access.Queryer
}

func NewHandler(store *Store, db access.Queryer) *Handler {
	return &Handler{Store: store, DB: db}
}

// Upload accepts a multipart "receipt" file and returns the object path the
// client stores as the transaction's receipt_url.
func (h *Handler) Upload(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if h.Store == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "receipt storage not configured")
	}

	fh, err := c.FormFile("receipt")
	if err != nil {
		return apperr.Validation("receipt file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	path, err := h.Store.Save(c.UserContext(), userID, fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"receipt_url": path})
}

// Download streams a stored receipt back to a caller who uploaded it or can
// see a transaction carrying it.
func (h *Handler) Download(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if h.Store == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "receipt storage not configured")
	}

	path := c.Params("*")
	if err := h.authorize(c.UserContext(), userID, path); err != nil {
		return err
	}

	rc, err := h.Store.Open(c.UserContext(), path)
	if err != nil {
		return err
	}
	return c.SendStream(rc)
}

// ownsPath reports whether the object sits under the caller's own prefix.
// Save keys every upload by uploader id, so the prefix is authoritative.
func ownsPath(userID, path string) bool {
	return strings.HasPrefix(path, userID+"/")
}

// authorize admits the uploader, or anyone who can see a transaction
// carrying this receipt. Visibility matches the transaction list: author,
// wallet owner on either side, or a shared-access holder. Revoking a grant
// revokes the receipt with it.
func (h *Handler) authorize(ctx context.Context, userID, path string) error {
	if ownsPath(userID, path) {
		return nil
	}

	var visible bool
	err := h.DB.QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1
  FROM transactions t
  JOIN wallets w ON w.id = t.wallet_id
  LEFT JOIN wallets tw ON tw.id = t.to_wallet_id
  WHERE t.receipt_url = $2
    AND (
      t.user_id = $1::uuid
      OR w.user_id = $1::uuid
      OR tw.user_id = $1::uuid
      OR EXISTS (SELECT 1 FROM shared_wallets sw WHERE sw.wallet_id = t.wallet_id AND sw.user_id = $1::uuid)
      OR EXISTS (SELECT 1 FROM shared_wallets sw WHERE sw.wallet_id = t.to_wallet_id AND sw.user_id = $1::uuid)
    )
)`, userID, path).Scan(&visible)
	if err != nil {
		return err
	}
	if !visible {
		return apperr.Forbidden("no access to this receipt")
	}
	return nil
}
