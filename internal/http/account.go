package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/audit"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/auth"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/journal"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/money"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/wallet"
)

// DeleteAccount removes the user and everything they own in one database
// transaction: their journal entries, every entry touching their wallets,
// shares in both directions, and finally the user row (wallets and settings
// cascade from it). Entries that touched wallets the user does not own have
// their balance effects reversed so collaborators' ledgers stay consistent.
func (h *ProfileHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	ctx := userContext(c)

	tx, err := h.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ownedIDs, err := ownedWalletIDs(ctx, tx, userID)
	if err != nil {
		return err
	}
	owned := make(map[string]struct{}, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = struct{}{}
	}

	// First pass just discovers which wallets the deletion touches, so every
	// lock can be taken in the journal's ascending order.
	entries, err := doomedEntries(ctx, tx, userID, ownedIDs)
	if err != nil {
		return err
	}
	rev := survivorReversal(entries, owned)
	if err := wallet.LockBalances(ctx, tx, journal.WalletIDs(append(rev, ownedEffects(ownedIDs)...))...); err != nil {
		return err
	}

	// Re-read under the locks; concurrent journal writes on these wallets
	// are now serialized behind us.
	entries, err = doomedEntries(ctx, tx, userID, ownedIDs)
	if err != nil {
		return err
	}
	for _, e := range survivorReversal(entries, owned) {
		if err := wallet.ApplyDelta(ctx, tx, e.WalletID, e.Delta); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM transactions
WHERE user_id = $1::uuid
   OR wallet_id = ANY($2::uuid[])
   OR to_wallet_id = ANY($2::uuid[])`, userID, ownedIDs); err != nil {
		return err
	}

	// Wallets, shared grants and notification settings cascade from users.
	ct, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	_ = audit.Write(ctx, h.DB, audit.Entry{
		Action:     audit.ActionAccountDelete,
		EntityType: "user",
		EntityID:   &userID,
	})

	return c.SendStatus(fiber.StatusNoContent)
}

func ownedWalletIDs(ctx context.Context, tx pgx.Tx, userID string) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT id::text FROM wallets WHERE user_id = $1::uuid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// doomedEntries lists every journal entry the deletion removes: the user's
// own, plus anyone's entries on the user's wallets.
func doomedEntries(ctx context.Context, tx pgx.Tx, userID string, ownedIDs []string) ([]domain.Transaction, error) {
	rows, err := tx.Query(ctx, `
SELECT t.type, t.amount::text, t.wallet_id::text, t.to_wallet_id::text
FROM transactions t
WHERE t.user_id = $1::uuid
   OR t.wallet_id = ANY($2::uuid[])
   OR t.to_wallet_id = ANY($2::uuid[])`, userID, ownedIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var amount string
		if err := rows.Scan(&t.Type, &amount, &t.WalletID, &t.ToWalletID); err != nil {
			return nil, err
		}
		t.Amount, err = money.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// survivorReversal folds the reversal of every doomed entry, restricted to
// wallets that outlive the deletion. Deltas on the user's own wallets are
// dropped since those rows go with the account.
func survivorReversal(entries []domain.Transaction, owned map[string]struct{}) []journal.Effect {
	var all []journal.Effect
	for _, t := range entries {
		for _, e := range journal.Reversal(t) {
			if _, ok := owned[e.WalletID]; ok {
				continue
			}
			all = append(all, e)
		}
	}
	return journal.Merge(all)
}

func ownedEffects(ids []string) []journal.Effect {
	out := make([]journal.Effect, 0, len(ids))
	for _, id := range ids {
		out = append(out, journal.Effect{WalletID: id})
	}
	return out
}
