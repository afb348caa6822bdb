// Package access answers "what may this user do with this wallet". It is the
// leaf the sharing directory, wallet ledger and transaction journal all
// consult before mutating anything.
package access

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
)

// Level is the caller's relationship to a wallet.
type Level int

const (
	// None means the wallet exists but the user holds no grant. Callers must
	// treat it as permission denied without revealing wallet existence.
	None Level = iota
	// Shared grants transaction read/write but not wallet deletion, balance
	// override or re-sharing.
	Shared
	// Owner is the wallet creator; every operation is permitted.
	Owner
)

func (l Level) String() string {
	switch l {
	case Owner:
		return "owner"
	case Shared:
		return "shared"
	default:
		return "none"
	}
}

// CanWrite reports whether the level allows recording transactions.
func (l Level) CanWrite() bool { return l == Owner || l == Shared }

// Queryer is the subset of pgx both *pgxpool.Pool and pgx.Tx satisfy, so
// resolution can run inside an open transaction and hold its snapshot.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Resolve determines the user's level on a wallet. Absent wallets return a
// NotFound error; an existing wallet with no grant returns None and nil.
func Resolve(ctx context.Context, q Queryer, userID, walletID string) (Level, error) {
	var ownerID string
	var shared bool
	err := q.QueryRow(ctx, `
SELECT w.user_id::text,
       EXISTS (
         SELECT 1 FROM shared_wallets sw
         WHERE sw.wallet_id = w.id AND sw.user_id = $2::uuid
       )
FROM wallets w
WHERE w.id = $1::uuid`,
		walletID, userID,
	).Scan(&ownerID, &shared)
	if errors.Is(err, pgx.ErrNoRows) {
		return None, apperr.NotFound("wallet not found")
	}
	if err != nil {
		return None, err
	}

	if ownerID == userID {
		return Owner, nil
	}
	if shared {
		return Shared, nil
	}
	return None, nil
}

// RequireWrite resolves and converts a non-writing level into the error the
// API returns: Forbidden, without confirming whether a grant exists.
func RequireWrite(ctx context.Context, q Queryer, userID, walletID string) (Level, error) {
	lvl, err := Resolve(ctx, q, userID, walletID)
	if err != nil {
		return None, err
	}
	if !lvl.CanWrite() {
		return None, apperr.Forbidden("no access to this wallet")
	}
	return lvl, nil
}
