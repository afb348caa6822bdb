package notify

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings is a user's notification preference row. A row is created with
// defaults the first time it is read.
type Settings struct {
	UserID                    string    `json:"user_id"`
	PushNotifications         bool      `json:"push_notifications"`
	EmailNotifications        bool      `json:"email_notifications"`
	TransactionNotifications  bool      `json:"transaction_notifications"`
	SharedWalletNotifications bool      `json:"shared_wallet_notifications"`
	BackupNotifications       bool      `json:"backup_notifications"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	PushNotifications         *bool `json:"push_notifications"`
	EmailNotifications        *bool `json:"email_notifications"`
	TransactionNotifications  *bool `json:"transaction_notifications"`
	SharedWalletNotifications *bool `json:"shared_wallet_notifications"`
	BackupNotifications       *bool `json:"backup_notifications"`
}

type SettingsRepo struct {
	Pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{Pool: pool}
}

const settingsColumns = `
	user_id::text, push_notifications, email_notifications,
	transaction_notifications, shared_wallet_notifications,
	backup_notifications, updated_at`

func scanSettings(row pgx.Row) (Settings, error) {
	var s Settings
	err := row.Scan(
		&s.UserID, &s.PushNotifications, &s.EmailNotifications,
		&s.TransactionNotifications, &s.SharedWalletNotifications,
		&s.BackupNotifications, &s.UpdatedAt,
	)
	return s, err
}

// Get returns the user's settings, inserting the default row on first read.
func (r *SettingsRepo) Get(ctx context.Context, userID string) (Settings, error) {
	row := r.Pool.QueryRow(ctx, `SELECT`+settingsColumns+` FROM user_notifications WHERE user_id = $1::uuid`, userID)
	s, err := scanSettings(row)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, err
	}

	row = r.Pool.QueryRow(ctx, `
INSERT INTO user_notifications (user_id, push_notifications, email_notifications,
	transaction_notifications, shared_wallet_notifications, backup_notifications)
VALUES ($1::uuid, TRUE, FALSE, TRUE, TRUE, TRUE)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING`+settingsColumns,
		userID,
	)
	return scanSettings(row)
}

func (r *SettingsRepo) Update(ctx context.Context, userID string, req UpdateSettingsRequest) (Settings, error) {
	// Ensure the row exists so partial updates on first touch still work.
	if _, err := r.Get(ctx, userID); err != nil {
		return Settings{}, err
	}

	row := r.Pool.QueryRow(ctx, `
UPDATE user_notifications SET
	push_notifications = COALESCE($2, push_notifications),
	email_notifications = COALESCE($3, email_notifications),
	transaction_notifications = COALESCE($4, transaction_notifications),
	shared_wallet_notifications = COALESCE($5, shared_wallet_notifications),
	backup_notifications = COALESCE($6, backup_notifications),
	updated_at = NOW()
WHERE user_id = $1::uuid
RETURNING`+settingsColumns,
		userID,
		req.PushNotifications, req.EmailNotifications, req.TransactionNotifications,
		req.SharedWalletNotifications, req.BackupNotifications,
	)
	return scanSettings(row)
}

// HasListeningCollaborators reports whether anyone besides the actor holds
// access to the wallet with shared-wallet notifications enabled (missing
// settings rows count as enabled, matching the defaults).
func (r *SettingsRepo) HasListeningCollaborators(ctx context.Context, walletID, actorUserID string) (bool, error) {
	var ok bool
	err := r.Pool.QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1
  FROM (
    SELECT w.user_id FROM wallets w WHERE w.id = $1::uuid
    UNION
    SELECT sw.user_id FROM shared_wallets sw WHERE sw.wallet_id = $1::uuid
  ) members
  LEFT JOIN user_notifications un ON un.user_id = members.user_id
  WHERE members.user_id <> $2::uuid
    AND COALESCE(un.shared_wallet_notifications, TRUE)
)`, walletID, actorUserID).Scan(&ok)
	return ok, err
}
