// Package journal is the single write path for transactions. Every create,
// update and delete applies or reverses its balance effects on the wallet
// ledger inside one database transaction, under row locks taken in a fixed
// order, so a wallet balance always equals the fold of its journal entries.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/access"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/money"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/notify"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/wallet"
)

// DB is the slice of *pgxpool.Pool the journal needs: it hands out the
// transactions every write runs in.
type DB interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

type Journal struct {
	Pool     DB
	Settings *notify.SettingsRepo
	Emitter  notify.Emitter
	Log      zerolog.Logger
}

func New(pool DB, settings *notify.SettingsRepo, emitter notify.Emitter, log zerolog.Logger) *Journal {
	return &Journal{Pool: pool, Settings: settings, Emitter: emitter, Log: log}
}

const txColumns = `
	t.id::text, t.user_id::text, t.type, t.amount::text, t.description, t.notes,
	t.category_id::text, t.wallet_id::text, t.to_wallet_id::text,
	t.date, t.time::text, t.receipt_url, t.created_at, t.updated_at`

// Same column list without the alias, for INSERT/UPDATE ... RETURNING.
const txColumnsBare = `
	id::text, user_id::text, type, amount::text, description, notes,
	category_id::text, wallet_id::text, to_wallet_id::text,
	date, time::text, receipt_url, created_at, updated_at`

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	var amount string
	err := row.Scan(
		&t.ID, &t.UserID, &t.Type, &amount, &t.Description, &t.Notes,
		&t.CategoryID, &t.WalletID, &t.ToWalletID,
		&t.Date, &t.Time, &t.ReceiptURL, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	t.Amount, err = money.ParseAmount(amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("stored amount: %w", err)
	}
	return t, nil
}

// Create validates, authorizes, then atomically inserts the entry and folds
// its effects into the wallet balances. Any failure aborts the whole
// database transaction.
func (j *Journal) Create(ctx context.Context, actorID string, req CreateTransactionRequest) (domain.Transaction, error) {
	typ, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return domain.Transaction{}, err
	}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		return domain.Transaction{}, apperr.Validation("amount must be a positive decimal")
	}

	entry := domain.Transaction{
		UserID:      actorID,
		Type:        typ,
		Amount:      amount,
		Description: req.Description,
		Notes:       req.Notes,
		CategoryID:  req.CategoryID,
		WalletID:    req.WalletID,
		ToWalletID:  req.ToWalletID,
		ReceiptURL:  req.ReceiptURL,
	}

	// Both defaults come from the same instant so the pair stays consistent
	// across midnight.
	entry.Date, entry.Time = defaultDateTime(time.Now())
	if req.Date != "" {
		entry.Date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return domain.Transaction{}, apperr.Validation("date must be YYYY-MM-DD")
		}
	}
	if req.Time != "" {
		if _, err := time.Parse("15:04", req.Time); err != nil {
			return domain.Transaction{}, apperr.Validation("time must be HH:MM")
		}
		entry.Time = req.Time
	}

	if err := entry.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	tx, err := j.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Transaction{}, err
	}
	defer tx.Rollback(ctx)

	// Authorization happens inside the transaction, before any mutation.
	if err := j.requireWriteAll(ctx, tx, actorID, walletsOf(entry)); err != nil {
		return domain.Transaction{}, err
	}

	effects := Effects(entry)
	if err := wallet.LockBalances(ctx, tx, WalletIDs(effects)...); err != nil {
		return domain.Transaction{}, err
	}

	row := tx.QueryRow(ctx, `
INSERT INTO transactions
	(user_id, type, amount, description, notes, category_id, wallet_id, to_wallet_id, date, time, receipt_url)
VALUES
	($1::uuid, $2, $3::numeric, $4, $5, $6::uuid, $7::uuid, $8::uuid, $9, $10::time, $11)
RETURNING`+txColumnsBare,
		actorID, string(entry.Type), entry.Amount.String(), entry.Description, entry.Notes,
		entry.CategoryID, entry.WalletID, entry.ToWalletID, entry.Date, entry.Time, entry.ReceiptURL,
	)
	created, err := scanTransaction(row)
	if err != nil {
		return domain.Transaction{}, mapForeignKey(err)
	}

	for _, e := range effects {
		if err := wallet.ApplyDelta(ctx, tx, e.WalletID, e.Delta); err != nil {
			return domain.Transaction{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Transaction{}, err
	}

	if created.Type != domain.TxTransfer {
		j.emitAsync(created)
	}

	return created, nil
}

// Update loads the existing entry, reverses its old effect and applies the
// new one as a single net delta per wallet, atomically with the row update.
func (j *Journal) Update(ctx context.Context, actorID, txID string, req UpdateTransactionRequest) (domain.Transaction, error) {
	tx, err := j.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Transaction{}, err
	}
	defer tx.Rollback(ctx)

	old, err := j.loadForUpdate(ctx, tx, txID)
	if err != nil {
		return domain.Transaction{}, err
	}

	updated, err := mergeUpdate(old, req)
	if err != nil {
		return domain.Transaction{}, err
	}
	if err := updated.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	// The actor needs write access to every wallet the edit touches, on
	// both the old and the new shape of the entry.
	if err := j.requireWriteAll(ctx, tx, actorID, union(walletsOf(old), walletsOf(updated))); err != nil {
		return domain.Transaction{}, err
	}

	net := NetEffects(old, updated)
	if err := wallet.LockBalances(ctx, tx, WalletIDs(net)...); err != nil {
		return domain.Transaction{}, err
	}

	row := tx.QueryRow(ctx, `
UPDATE transactions SET
	type = $2, amount = $3::numeric, description = $4, notes = $5,
	category_id = $6::uuid, wallet_id = $7::uuid, to_wallet_id = $8::uuid,
	date = $9, time = $10::time, receipt_url = $11, updated_at = NOW()
WHERE id = $1::uuid
RETURNING`+txColumnsBare,
		txID, string(updated.Type), updated.Amount.String(), updated.Description, updated.Notes,
		updated.CategoryID, updated.WalletID, updated.ToWalletID, updated.Date, updated.Time, updated.ReceiptURL,
	)
	saved, err := scanTransaction(row)
	if err != nil {
		return domain.Transaction{}, mapForeignKey(err)
	}

	for _, e := range net {
		if err := wallet.ApplyDelta(ctx, tx, e.WalletID, e.Delta); err != nil {
			return domain.Transaction{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Transaction{}, err
	}
	return saved, nil
}

// Delete reverses the entry's balance effect and removes the row atomically.
func (j *Journal) Delete(ctx context.Context, actorID, txID string) error {
	tx, err := j.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	entry, err := j.loadForUpdate(ctx, tx, txID)
	if err != nil {
		return err
	}

	if err := j.requireWriteAll(ctx, tx, actorID, walletsOf(entry)); err != nil {
		return err
	}

	rev := Reversal(entry)
	if err := wallet.LockBalances(ctx, tx, WalletIDs(rev)...); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1::uuid`, txID); err != nil {
		return err
	}

	for _, e := range rev {
		if err := wallet.ApplyDelta(ctx, tx, e.WalletID, e.Delta); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Get returns a single entry the caller may read.
func (j *Journal) Get(ctx context.Context, actorID, txID string) (domain.Transaction, error) {
	row := j.Pool.QueryRow(ctx, `SELECT`+txColumns+` FROM transactions t WHERE t.id = $1::uuid`, txID)
	entry, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, apperr.NotFound("transaction not found")
	}
	if err != nil {
		return domain.Transaction{}, err
	}

	if entry.UserID != actorID {
		if err := j.requireReadAny(ctx, actorID, walletsOf(entry)); err != nil {
			return domain.Transaction{}, err
		}
	}
	return entry, nil
}

// List returns entries visible to the caller: their own, plus entries on
// wallets they own or that are shared with them. Filters are additive.
func (j *Journal) List(ctx context.Context, actorID string, filter Filter) ([]domain.Transaction, error) {
	if filter.WalletID != "" {
		// Scoping to one wallet requires access to it; None must read as
		// permission denied, not an empty result.
		if _, err := access.RequireWrite(ctx, j.Pool, actorID, filter.WalletID); err != nil {
			return nil, err
		}
	}

	sql := `
SELECT` + txColumns + `,
	w.name, tw.name, c.name
FROM transactions t
JOIN wallets w ON w.id = t.wallet_id
LEFT JOIN wallets tw ON tw.id = t.to_wallet_id
LEFT JOIN categories c ON c.id = t.category_id
WHERE (
	t.user_id = $1::uuid
	OR w.user_id = $1::uuid
	OR tw.user_id = $1::uuid
	OR EXISTS (SELECT 1 FROM shared_wallets sw WHERE sw.wallet_id = t.wallet_id AND sw.user_id = $1::uuid)
	OR EXISTS (SELECT 1 FROM shared_wallets sw WHERE sw.wallet_id = t.to_wallet_id AND sw.user_id = $1::uuid)
)`

	args := []any{actorID}
	if filter.WalletID != "" {
		args = append(args, filter.WalletID)
		sql += fmt.Sprintf(" AND (t.wallet_id = $%d::uuid OR t.to_wallet_id = $%d::uuid)", len(args), len(args))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		sql += fmt.Sprintf(" AND t.user_id = $%d::uuid", len(args))
	}
	if filter.Type != "" {
		if _, err := domain.ParseTransactionType(filter.Type); err != nil {
			return nil, err
		}
		args = append(args, filter.Type)
		sql += fmt.Sprintf(" AND t.type = $%d", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		sql += fmt.Sprintf(" AND t.category_id = $%d::uuid", len(args))
	}
	if !filter.DateFrom.IsZero() {
		args = append(args, filter.DateFrom)
		sql += fmt.Sprintf(" AND t.date >= $%d", len(args))
	}
	if !filter.DateTo.IsZero() {
		args = append(args, filter.DateTo)
		sql += fmt.Sprintf(" AND t.date <= $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY t.date DESC, t.time DESC LIMIT $%d", len(args))

	rows, err := j.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		var amount string
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &amount, &t.Description, &t.Notes,
			&t.CategoryID, &t.WalletID, &t.ToWalletID,
			&t.Date, &t.Time, &t.ReceiptURL, &t.CreatedAt, &t.UpdatedAt,
			&t.WalletName, &t.ToWalletName, &t.CategoryName,
		)
		if err != nil {
			return nil, err
		}
		t.Amount, err = money.ParseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("stored amount: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *Journal) loadForUpdate(ctx context.Context, tx pgx.Tx, txID string) (domain.Transaction, error) {
	// Lock the journal row itself so concurrent edits of the same entry
	// serialize before any wallet lock is taken.
	row := tx.QueryRow(ctx, `SELECT`+txColumnsBare+` FROM transactions t WHERE t.id = $1::uuid FOR UPDATE OF t`, txID)
	entry, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, apperr.NotFound("transaction not found")
	}
	return entry, err
}

func (j *Journal) requireWriteAll(ctx context.Context, q access.Queryer, actorID string, walletIDs []string) error {
	for _, id := range walletIDs {
		if _, err := access.RequireWrite(ctx, q, actorID, id); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) requireReadAny(ctx context.Context, actorID string, walletIDs []string) error {
	for _, id := range walletIDs {
		lvl, err := access.Resolve(ctx, j.Pool, actorID, id)
		if err == nil && lvl.CanWrite() {
			return nil
		}
	}
	return apperr.Forbidden("no access to this transaction")
}

func (j *Journal) emitAsync(entry domain.Transaction) {
	ev := notify.Event{
		TransactionID: entry.ID,
		WalletID:      entry.WalletID,
		ActorUserID:   entry.UserID,
		Amount:        entry.Amount,
		Description:   entry.Description,
		Type:          entry.Type,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		ok, err := j.Settings.HasListeningCollaborators(ctx, ev.WalletID, ev.ActorUserID)
		if err != nil {
			j.Log.Warn().Err(err).Str("transaction_id", ev.TransactionID).Msg("notification fanout check failed")
			return
		}
		if !ok {
			return
		}
		if err := j.Emitter.Emit(ctx, ev); err != nil {
			j.Log.Warn().Err(err).Str("transaction_id", ev.TransactionID).Msg("notification emit failed")
		}
	}()
}

func walletsOf(t domain.Transaction) []string {
	ids := []string{t.WalletID}
	if t.ToWalletID != nil && *t.ToWalletID != "" {
		ids = append(ids, *t.ToWalletID)
	}
	return ids
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, id := range append(append([]string(nil), a...), b...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func mergeUpdate(old domain.Transaction, req UpdateTransactionRequest) (domain.Transaction, error) {
	updated := old

	if req.Type != nil {
		typ, err := domain.ParseTransactionType(*req.Type)
		if err != nil {
			return domain.Transaction{}, err
		}
		updated.Type = typ
	}
	if req.Amount != nil {
		amount, err := money.ParseAmount(*req.Amount)
		if err != nil {
			return domain.Transaction{}, apperr.Validation("amount must be a positive decimal")
		}
		updated.Amount = amount
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Notes != nil {
		updated.Notes = req.Notes
	}
	if req.CategoryID != nil {
		updated.CategoryID = req.CategoryID
	}
	if req.WalletID != nil {
		updated.WalletID = *req.WalletID
	}
	if req.ToWalletID != nil {
		updated.ToWalletID = req.ToWalletID
	}
	if req.Date != nil {
		d, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return domain.Transaction{}, apperr.Validation("date must be YYYY-MM-DD")
		}
		updated.Date = d
	}
	if req.Time != nil {
		if _, err := time.Parse("15:04", *req.Time); err != nil {
			return domain.Transaction{}, apperr.Validation("time must be HH:MM")
		}
		updated.Time = *req.Time
	}
	if req.ReceiptURL != nil {
		updated.ReceiptURL = req.ReceiptURL
	}

	// A type change away from transfer releases the destination; a change to
	// transfer sheds the category. The remaining invariants run in Validate.
	if updated.Type != domain.TxTransfer {
		updated.ToWalletID = nil
	} else {
		updated.CategoryID = nil
	}

	return updated, nil
}

func defaultDateTime(now time.Time) (time.Time, string) {
	now = now.UTC()
	return now.Truncate(24 * time.Hour), now.Format("15:04")
}

func mapForeignKey(err error) error {
	// 23503 foreign_key_violation: the category or wallet reference is gone.
	if isPgCode(err, "23503") {
		return apperr.NotFound("referenced entity does not exist")
	}
	return err
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
