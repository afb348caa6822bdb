package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
)

// WalletType is the closed set of account kinds a wallet can be.
type WalletType string

const (
	WalletBank       WalletType = "bank"
	WalletEWallet    WalletType = "e_wallet"
	WalletCash       WalletType = "cash"
	WalletInvestment WalletType = "investment"
)

// ParseWalletType rejects anything outside the closed set at the boundary.
func ParseWalletType(s string) (WalletType, error) {
	switch WalletType(s) {
	case WalletBank, WalletEWallet, WalletCash, WalletInvestment:
		return WalletType(s), nil
	}
	return "", apperr.Newf(apperr.KindValidation, "invalid wallet type %q", s)
}

// Wallet is a named account with a running balance. Balance is derived from
// the journal: after creation it only moves through journal apply/reverse,
// never through a client-supplied write.
type Wallet struct {
	ID            string          `db:"id" json:"id"`
	OwnerUserID   string          `db:"user_id" json:"user_id"`
	Name          string          `db:"name" json:"name"`
	Type          WalletType      `db:"type" json:"type"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	AccountNumber *string         `db:"account_number" json:"account_number,omitempty"`
	Color         string          `db:"color" json:"color"`
	Icon          string          `db:"icon" json:"icon"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
