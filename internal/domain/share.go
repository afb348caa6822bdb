package domain

import (
	"time"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
)

// ShareRole is the role a grant carries. The owner never has a row; "owner"
// exists so legacy rows written by older clients still parse.
type ShareRole string

const (
	RoleOwner ShareRole = "owner"
	RoleUser  ShareRole = "user"
)

func ParseShareRole(s string) (ShareRole, error) {
	switch ShareRole(s) {
	case RoleOwner, RoleUser:
		return ShareRole(s), nil
	}
	return "", apperr.Newf(apperr.KindValidation, "invalid share role %q", s)
}

// SharedAccess grants a non-owner user read/write access to a wallet's
// transactions. Unique on (wallet_id, user_id).
type SharedAccess struct {
	ID        string    `db:"id" json:"id"`
	WalletID  string    `db:"wallet_id" json:"wallet_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Role      ShareRole `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Projections for list responses.
	UserEmail    *string `db:"-" json:"user_email,omitempty"`
	UserFullName *string `db:"-" json:"user_full_name,omitempty"`
}
