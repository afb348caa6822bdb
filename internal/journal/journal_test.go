package journal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
)

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

// fakeTx scripts the journal's write path: it records every statement in
// order and serves canned rows, so the tests can assert lock/apply/commit
// sequencing without a database.
type fakeTx struct {
	calls      []string
	ownerID    string
	entry      domain.Transaction
	applyErr   error
	committed  bool
	rolledBack bool
}

func writeEntry(e domain.Transaction, dest []any) {
	*dest[0].(*string) = e.ID
	*dest[1].(*string) = e.UserID
	*dest[2].(*domain.TransactionType) = e.Type
	*dest[3].(*string) = e.Amount.String()
	*dest[4].(*string) = e.Description
	*dest[5].(**string) = e.Notes
	*dest[6].(**string) = e.CategoryID
	*dest[7].(*string) = e.WalletID
	*dest[8].(**string) = e.ToWalletID
	*dest[9].(*time.Time) = e.Date
	*dest[10].(*string) = e.Time
	*dest[11].(**string) = e.ReceiptURL
	*dest[12].(*time.Time) = e.CreatedAt
	*dest[13].(*time.Time) = e.UpdatedAt
}

func (f *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "INSERT INTO transactions"):
		f.calls = append(f.calls, "insert")
		inserted := domain.Transaction{
			ID:          "3e3f1c1a-0000-0000-0000-000000000001",
			UserID:      args[0].(string),
			Type:        domain.TransactionType(args[1].(string)),
			Amount:      dec(args[2].(string)),
			Description: args[3].(string),
			Notes:       args[4].(*string),
			CategoryID:  args[5].(*string),
			WalletID:    args[6].(string),
			ToWalletID:  args[7].(*string),
			Date:        args[8].(time.Time),
			Time:        args[9].(string),
			ReceiptURL:  args[10].(*string),
		}
		return rowFunc(func(dest ...any) error { writeEntry(inserted, dest); return nil })

	case strings.Contains(sql, "FOR UPDATE OF t"):
		f.calls = append(f.calls, "load "+args[0].(string))
		return rowFunc(func(dest ...any) error { writeEntry(f.entry, dest); return nil })

	case strings.Contains(sql, "shared_wallets"):
		f.calls = append(f.calls, "authz "+args[0].(string))
		return rowFunc(func(dest ...any) error {
			*dest[0].(*string) = f.ownerID
			*dest[1].(*bool) = false
			return nil
		})

	case strings.Contains(sql, "FOR UPDATE"):
		id := args[0].(string)
		f.calls = append(f.calls, "lock "+id)
		return rowFunc(func(dest ...any) error {
			*dest[0].(*string) = id
			return nil
		})
	}
	return rowFunc(func(...any) error { return errors.New("unexpected query: " + sql) })
}

func (f *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "balance = balance +"):
		f.calls = append(f.calls, "apply "+args[0].(string))
		if f.applyErr != nil {
			return pgconn.CommandTag{}, f.applyErr
		}
		return pgconn.NewCommandTag("UPDATE 1"), nil
	case strings.Contains(sql, "DELETE FROM transactions"):
		f.calls = append(f.calls, "delete")
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected exec: " + sql)
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	f.calls = append(f.calls, "commit")
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return nil
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) { return f, nil }
func (f *fakeTx) Conn() *pgx.Conn                       { return nil }
func (f *fakeTx) LargeObjects() pgx.LargeObjects        { return pgx.LargeObjects{} }

func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not scripted")
}
func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { panic("not scripted") }
func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not scripted")
}
func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { panic("not scripted") }

type fakeDB struct{ tx *fakeTx }

func (db *fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) { return db.tx, nil }
func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not scripted")
}
func (db *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { panic("not scripted") }

const (
	actor   = "9a8b0000-0000-0000-0000-0000000000aa"
	walletA = "aaaa0000-0000-0000-0000-000000000001"
	walletB = "bbbb0000-0000-0000-0000-000000000002"
)

func newTestJournal(tx *fakeTx) *Journal {
	return New(&fakeDB{tx: tx}, nil, nil, zerolog.Nop())
}

func TestCreateLocksBeforeApplyThenCommits(t *testing.T) {
	tx := &fakeTx{ownerID: actor}
	j := newTestJournal(tx)

	created, err := j.Create(context.Background(), actor, CreateTransactionRequest{
		Type:        "transfer",
		Amount:      "100",
		Description: "move savings",
		WalletID:    walletA,
		ToWalletID:  strptr(walletB),
	})
	require.NoError(t, err)
	assert.True(t, created.Amount.Equal(dec("100")))
	assert.NotEmpty(t, created.ID)

	// Authorize, then lock every touched wallet in ascending order, then
	// insert, then fold the deltas, then commit. Nothing interleaves.
	assert.Equal(t, []string{
		"authz " + walletA,
		"authz " + walletB,
		"lock " + walletA,
		"lock " + walletB,
		"insert",
		"apply " + walletA,
		"apply " + walletB,
		"commit",
	}, tx.calls)
	assert.False(t, tx.rolledBack)
}

func TestCreateRollsBackOnFailedDelta(t *testing.T) {
	tx := &fakeTx{ownerID: actor, applyErr: errors.New("connection reset")}
	j := newTestJournal(tx)

	_, err := j.Create(context.Background(), actor, CreateTransactionRequest{
		Type:        "transfer",
		Amount:      "100",
		Description: "move savings",
		WalletID:    walletA,
		ToWalletID:  strptr(walletB),
	})
	require.Error(t, err)

	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
	assert.NotContains(t, tx.calls, "commit")
	// The row was inserted inside the aborted transaction, so the failed
	// delta discards it with everything else.
	assert.Contains(t, tx.calls, "insert")
}

func TestCreateForbiddenBeforeAnyMutation(t *testing.T) {
	tx := &fakeTx{ownerID: "someone-else"}
	j := newTestJournal(tx)

	_, err := j.Create(context.Background(), actor, CreateTransactionRequest{
		Type:        "transfer",
		Amount:      "100",
		Description: "move savings",
		WalletID:    walletA,
		ToWalletID:  strptr(walletB),
	})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	assert.Equal(t, []string{"authz " + walletA}, tx.calls)
	assert.True(t, tx.rolledBack)
}

func TestDeleteReversesUnderLock(t *testing.T) {
	tx := &fakeTx{
		ownerID: actor,
		entry: domain.Transaction{
			ID:          "3e3f1c1a-0000-0000-0000-000000000002",
			UserID:      actor,
			Type:        domain.TxExpense,
			Amount:      dec("40"),
			Description: "groceries",
			WalletID:    walletA,
			Date:        time.Now(),
			Time:        "12:00",
		},
	}
	j := newTestJournal(tx)

	require.NoError(t, j.Delete(context.Background(), actor, tx.entry.ID))

	assert.Equal(t, []string{
		"load " + tx.entry.ID,
		"authz " + walletA,
		"lock " + walletA,
		"delete",
		"apply " + walletA,
		"commit",
	}, tx.calls)
}

func TestDefaultDateTimeSameInstant(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 59, 30, 0, time.FixedZone("WIB", 7*3600))

	date, clock := defaultDateTime(now)
	// 23:59 WIB is 16:59 UTC the same day; both halves must agree on it.
	assert.Equal(t, "2026-03-01", date.Format("2006-01-02"))
	assert.Equal(t, "16:59", clock)
}
