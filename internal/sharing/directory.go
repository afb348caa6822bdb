// Package sharing maps wallets to the users granted access to them. Grants
// are explicit: duplicates are rejected rather than treated as idempotent
// no-ops, matching what the client expects to surface.
package sharing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/access"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/audit"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
)

type Directory struct {
	Pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{Pool: pool}
}

// Share grants target (resolved from an email or full name) access to the
// wallet. Only the owner may share; sharing with yourself or with a user
// who already holds a grant is rejected explicitly.
func (d *Directory) Share(ctx context.Context, walletID, ownerID, targetIdentifier string) (domain.SharedAccess, error) {
	lvl, err := access.Resolve(ctx, d.Pool, ownerID, walletID)
	if err != nil {
		return domain.SharedAccess{}, err
	}
	if lvl != access.Owner {
		return domain.SharedAccess{}, apperr.Forbidden("only the owner can share a wallet")
	}

	targetID, err := d.resolveTarget(ctx, targetIdentifier)
	if err != nil {
		return domain.SharedAccess{}, err
	}
	if targetID == ownerID {
		return domain.SharedAccess{}, apperr.SelfShare("cannot share a wallet with yourself")
	}

	var sa domain.SharedAccess
	err = d.Pool.QueryRow(ctx, `
INSERT INTO shared_wallets (wallet_id, user_id, role)
VALUES ($1::uuid, $2::uuid, 'user')
RETURNING id::text, wallet_id::text, user_id::text, role, created_at`,
		walletID, targetID,
	).Scan(&sa.ID, &sa.WalletID, &sa.UserID, &sa.Role, &sa.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.SharedAccess{}, apperr.AlreadyShared("wallet is already shared with this user")
		}
		return domain.SharedAccess{}, err
	}

	_ = audit.Write(ctx, d.Pool, audit.Entry{
		UserID:     &ownerID,
		Action:     audit.ActionWalletShare,
		EntityType: "shared_wallet",
		EntityID:   &sa.ID,
	})

	return sa, nil
}

// Unshare removes a grant. Allowed for the wallet owner and for the shared
// user revoking their own access.
func (d *Directory) Unshare(ctx context.Context, sharedAccessID, requesterID string) error {
	var walletOwnerID, grantUserID string
	err := d.Pool.QueryRow(ctx, `
SELECT w.user_id::text, sw.user_id::text
FROM shared_wallets sw
JOIN wallets w ON w.id = sw.wallet_id
WHERE sw.id = $1::uuid`,
		sharedAccessID,
	).Scan(&walletOwnerID, &grantUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("shared access not found")
	}
	if err != nil {
		return err
	}

	if requesterID != walletOwnerID && requesterID != grantUserID {
		return apperr.Forbidden("not allowed to remove this access")
	}

	ct, err := d.Pool.Exec(ctx, `DELETE FROM shared_wallets WHERE id = $1::uuid`, sharedAccessID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("shared access not found")
	}

	_ = audit.Write(ctx, d.Pool, audit.Entry{
		UserID:     &requesterID,
		Action:     audit.ActionWalletUnshare,
		EntityType: "shared_wallet",
		EntityID:   &sharedAccessID,
	})

	return nil
}

// ListAccess returns grants on a wallet. The owner sees every grant; a
// shared user sees only their own row.
func (d *Directory) ListAccess(ctx context.Context, walletID, requesterID string) ([]domain.SharedAccess, error) {
	lvl, err := access.Resolve(ctx, d.Pool, requesterID, walletID)
	if err != nil {
		return nil, err
	}
	if !lvl.CanWrite() {
		return nil, apperr.Forbidden("no access to this wallet")
	}

	sql := `
SELECT sw.id::text, sw.wallet_id::text, sw.user_id::text, sw.role, sw.created_at,
       u.email, u.full_name
FROM shared_wallets sw
JOIN users u ON u.id = sw.user_id
WHERE sw.wallet_id = $1::uuid`
	args := []any{walletID}

	if lvl != access.Owner {
		args = append(args, requesterID)
		sql += ` AND sw.user_id = $2::uuid`
	}
	sql += ` ORDER BY sw.created_at DESC`

	rows, err := d.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SharedAccess, 0)
	for rows.Next() {
		var sa domain.SharedAccess
		if err := rows.Scan(&sa.ID, &sa.WalletID, &sa.UserID, &sa.Role, &sa.CreatedAt, &sa.UserEmail, &sa.UserFullName); err != nil {
			return nil, err
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}
