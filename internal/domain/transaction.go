package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
)

// TransactionType is the closed set of journal entry kinds.
type TransactionType string

const (
	TxIncome   TransactionType = "income"
	TxExpense  TransactionType = "expense"
	TxTransfer TransactionType = "transfer"
)

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TxIncome, TxExpense, TxTransfer:
		return TransactionType(s), nil
	}
	return "", apperr.Newf(apperr.KindValidation, "invalid transaction type %q", s)
}

// Transaction is a single journal entry. Income and expense touch WalletID
// only; a transfer also carries ToWalletID, which must differ from WalletID.
// CategoryID is null for transfers.
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	Type        TransactionType `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	CategoryID  *string         `db:"category_id" json:"category_id,omitempty"`
	WalletID    string          `db:"wallet_id" json:"wallet_id"`
	ToWalletID  *string         `db:"to_wallet_id" json:"to_wallet_id,omitempty"`
	Date        time.Time       `db:"date" json:"date"`
	Time        string          `db:"time" json:"time"`
	ReceiptURL  *string         `db:"receipt_url" json:"receipt_url,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`

	// Read-side projections for list responses; never part of the write path.
	WalletName   *string `db:"-" json:"wallet_name,omitempty"`
	ToWalletName *string `db:"-" json:"to_wallet_name,omitempty"`
	CategoryName *string `db:"-" json:"category_name,omitempty"`
}

// Validate enforces the invariants every journal entry must satisfy before
// it reaches the database.
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return apperr.Validation("amount must be greater than zero")
	}
	if t.WalletID == "" {
		return apperr.Validation("wallet_id is required")
	}
	if t.Description == "" {
		return apperr.Validation("description is required")
	}
	switch t.Type {
	case TxIncome, TxExpense:
		if t.ToWalletID != nil {
			return apperr.Validation("to_wallet_id is only valid for transfers")
		}
	case TxTransfer:
		if t.ToWalletID == nil || *t.ToWalletID == "" {
			return apperr.Validation("transfer requires to_wallet_id")
		}
		if *t.ToWalletID == t.WalletID {
			return apperr.Validation("transfer source and destination must differ")
		}
		if t.CategoryID != nil {
			return apperr.Validation("transfer cannot carry a category")
		}
	default:
		return apperr.Newf(apperr.KindValidation, "invalid transaction type %q", t.Type)
	}
	return nil
}
