package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Actions recorded by the core. Reads are not audited.
const (
	ActionWalletShare   = "wallet.share"
	ActionWalletUnshare = "wallet.unshare"
	ActionWalletDelete  = "wallet.delete"
	ActionProfileUpdate = "profile.update"
	ActionAccountDelete = "account.delete"
)

type Entry struct {
	UserID     *string
	Action     string
	EntityType string
	EntityID   *string
	IP         *string
	Metadata   []byte
}

// Write records an audit entry. Failures are returned so callers can ignore
// them; auditing is best-effort and never blocks the operation it describes.
func Write(ctx context.Context, db *pgxpool.Pool, e Entry) error {
	if db == nil {
		return nil
	}

	var metadata any
	if len(e.Metadata) > 0 {
		metadata = json.RawMessage(e.Metadata)
	}

	_, err := db.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip, metadata)
VALUES ($1::uuid, $2, $3, $4::uuid, $5, $6)`,
		e.UserID, e.Action, e.EntityType, e.EntityID, e.IP, metadata)

	return err
}
