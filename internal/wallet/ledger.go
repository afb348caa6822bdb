// Package wallet owns wallet records and their balances. It is the single
// writer of the balance column: the journal applies signed deltas through
// ApplyDelta inside its own database transaction, and nothing else touches
// the field after creation.
package wallet

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/access"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/audit"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/money"
)

type Ledger struct {
	Pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{Pool: pool}
}

const walletColumns = `
	id::text, user_id::text, name, type, balance::text,
	account_number, color, icon, is_active, created_at, updated_at`

func scanWallet(row pgx.Row) (domain.Wallet, error) {
	var w domain.Wallet
	var balance string
	err := row.Scan(
		&w.ID, &w.OwnerUserID, &w.Name, &w.Type, &balance,
		&w.AccountNumber, &w.Color, &w.Icon, &w.IsActive, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return domain.Wallet{}, err
	}
	w.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return domain.Wallet{}, err
	}
	return w, nil
}

func (l *Ledger) Create(ctx context.Context, userID string, req CreateWalletRequest) (domain.Wallet, error) {
	if req.Name == "" {
		return domain.Wallet{}, apperr.Validation("name is required")
	}
	typ, err := domain.ParseWalletType(req.Type)
	if err != nil {
		return domain.Wallet{}, err
	}

	balance := decimal.Zero
	if req.Balance != "" {
		balance, err = decimal.NewFromString(req.Balance)
		if err != nil {
			return domain.Wallet{}, apperr.Validation("invalid initial balance")
		}
		if balance.Exponent() < -money.MaxScale {
			return domain.Wallet{}, apperr.Validation("invalid initial balance")
		}
	}

	row := l.Pool.QueryRow(ctx, `
INSERT INTO wallets (user_id, name, type, balance, account_number, color, icon)
VALUES ($1::uuid, $2, $3, $4::numeric, $5, COALESCE(NULLIF($6,''),'#3B82F6'), COALESCE(NULLIF($7,''),'wallet'))
RETURNING`+walletColumns,
		userID, req.Name, string(typ), balance.String(), req.AccountNumber, req.Color, req.Icon,
	)
	return scanWallet(row)
}

// Get returns a wallet the user owns or has shared access to.
func (l *Ledger) Get(ctx context.Context, userID, walletID string) (domain.Wallet, error) {
	lvl, err := access.Resolve(ctx, l.Pool, userID, walletID)
	if err != nil {
		return domain.Wallet{}, err
	}
	if !lvl.CanWrite() {
		return domain.Wallet{}, apperr.Forbidden("no access to this wallet")
	}

	row := l.Pool.QueryRow(ctx, `SELECT`+walletColumns+` FROM wallets WHERE id = $1::uuid`, walletID)
	w, err := scanWallet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Wallet{}, apperr.NotFound("wallet not found")
	}
	return w, err
}

// List returns the user's own wallets plus wallets shared with them,
// newest first.
func (l *Ledger) List(ctx context.Context, userID string) ([]domain.Wallet, error) {
	rows, err := l.Pool.Query(ctx, `
SELECT`+walletColumns+`
FROM wallets w
WHERE w.user_id = $1::uuid
   OR EXISTS (
     SELECT 1 FROM shared_wallets sw
     WHERE sw.wallet_id = w.id AND sw.user_id = $1::uuid
   )
ORDER BY w.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Wallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Update edits wallet metadata. Owner only; balance is not an editable field.
func (l *Ledger) Update(ctx context.Context, userID, walletID string, req UpdateWalletRequest) (domain.Wallet, error) {
	lvl, err := access.Resolve(ctx, l.Pool, userID, walletID)
	if err != nil {
		return domain.Wallet{}, err
	}
	if lvl != access.Owner {
		return domain.Wallet{}, apperr.Forbidden("only the owner can edit a wallet")
	}

	if req.Name != nil && *req.Name == "" {
		return domain.Wallet{}, apperr.Validation("name cannot be empty")
	}
	if req.Type != nil {
		if _, err := domain.ParseWalletType(*req.Type); err != nil {
			return domain.Wallet{}, err
		}
	}

	row := l.Pool.QueryRow(ctx, `
UPDATE wallets SET
	name = COALESCE($2, name),
	type = COALESCE($3, type),
	account_number = COALESCE($4, account_number),
	color = COALESCE($5, color),
	icon = COALESCE($6, icon),
	is_active = COALESCE($7, is_active),
	updated_at = NOW()
WHERE id = $1::uuid
RETURNING`+walletColumns,
		walletID, req.Name, req.Type, req.AccountNumber, req.Color, req.Icon, req.IsActive,
	)
	w, err := scanWallet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Wallet{}, apperr.NotFound("wallet not found")
	}
	return w, err
}

// Delete removes a wallet. Owner only; refused while any transaction still
// references the wallet as source or destination. Shared-access rows cascade
// first, all inside one database transaction.
func (l *Ledger) Delete(ctx context.Context, userID, walletID string) error {
	lvl, err := access.Resolve(ctx, l.Pool, userID, walletID)
	if err != nil {
		return err
	}
	if lvl != access.Owner {
		return apperr.Forbidden("only the owner can delete a wallet")
	}

	tx, err := l.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Take the wallet's balance lock first so the emptiness check below
	// serializes against a concurrent journal write holding the same lock.
	if err := LockBalances(ctx, tx, walletID); err != nil {
		return err
	}

	var hasTx bool
	err = tx.QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1 FROM transactions
  WHERE wallet_id = $1::uuid OR to_wallet_id = $1::uuid
)`, walletID).Scan(&hasTx)
	if err != nil {
		return err
	}
	if hasTx {
		return apperr.Conflict("wallet still has transactions")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM shared_wallets WHERE wallet_id = $1::uuid`, walletID); err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, `DELETE FROM wallets WHERE id = $1::uuid AND user_id = $2::uuid`, walletID, userID)
	if isFKViolation(err) {
		// A journal write slipped in on another connection.
		return apperr.Conflict("wallet still has transactions")
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("wallet not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	_ = audit.Write(ctx, l.Pool, audit.Entry{
		UserID:     &userID,
		Action:     audit.ActionWalletDelete,
		EntityType: "wallet",
		EntityID:   &walletID,
	})

	return nil
}

func isFKViolation(err error) bool {
	// 23503 foreign_key_violation
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// GetBalance returns the current balance without the rest of the record.
func (l *Ledger) GetBalance(ctx context.Context, userID, walletID string) (decimal.Decimal, error) {
	w, err := l.Get(ctx, userID, walletID)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

// LockBalances takes FOR UPDATE locks on the given wallets in ascending id
// order so concurrent journal mutations against overlapping wallet sets
// cannot deadlock. Returns NotFound if any id is absent.
func LockBalances(ctx context.Context, tx pgx.Tx, walletIDs ...string) error {
	ids := append([]string(nil), walletIDs...)
	sort.Strings(ids)

	for _, id := range ids {
		var locked string
		err := tx.QueryRow(ctx, `SELECT id::text FROM wallets WHERE id = $1::uuid FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("wallet not found")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ApplyDelta folds a signed journal effect into a wallet balance. Callers
// must hold the row lock via LockBalances in the same transaction.
func ApplyDelta(ctx context.Context, tx pgx.Tx, walletID string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	ct, err := tx.Exec(ctx, `
UPDATE wallets SET balance = balance + $2::numeric, updated_at = NOW()
WHERE id = $1::uuid`,
		walletID, delta.String(),
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("wallet not found")
	}
	return nil
}
