package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
)

func TestParseWalletType(t *testing.T) {
	for _, s := range []string{"bank", "e_wallet", "cash", "investment"} {
		got, err := ParseWalletType(s)
		require.NoError(t, err)
		assert.Equal(t, WalletType(s), got)
	}

	for _, s := range []string{"", "savings", "BANK", "ewallet"} {
		_, err := ParseWalletType(s)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "input %q", s)
	}
}

func TestParseTransactionType(t *testing.T) {
	for _, s := range []string{"income", "expense", "transfer"} {
		got, err := ParseTransactionType(s)
		require.NoError(t, err)
		assert.Equal(t, TransactionType(s), got)
	}

	_, err := ParseTransactionType("withdrawal")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestTransactionValidate(t *testing.T) {
	toW2 := "w2"
	sameW := "w1"
	cat := "c1"

	valid := Transaction{
		Type:        TxExpense,
		WalletID:    "w1",
		Amount:      decimal.NewFromInt(100),
		Description: "groceries",
		CategoryID:  &cat,
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr bool
	}{
		{name: "valid expense", mutate: func(*Transaction) {}},
		{
			name:    "zero amount",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.Zero },
			wantErr: true,
		},
		{
			name:    "negative amount",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-10) },
			wantErr: true,
		},
		{
			name:    "missing wallet",
			mutate:  func(tx *Transaction) { tx.WalletID = "" },
			wantErr: true,
		},
		{
			name:    "missing description",
			mutate:  func(tx *Transaction) { tx.Description = "" },
			wantErr: true,
		},
		{
			name:    "expense with destination wallet",
			mutate:  func(tx *Transaction) { tx.ToWalletID = &toW2 },
			wantErr: true,
		},
		{
			name: "valid transfer",
			mutate: func(tx *Transaction) {
				tx.Type = TxTransfer
				tx.ToWalletID = &toW2
				tx.CategoryID = nil
			},
		},
		{
			name: "transfer without destination",
			mutate: func(tx *Transaction) {
				tx.Type = TxTransfer
				tx.CategoryID = nil
			},
			wantErr: true,
		},
		{
			name: "transfer onto itself",
			mutate: func(tx *Transaction) {
				tx.Type = TxTransfer
				tx.ToWalletID = &sameW
				tx.CategoryID = nil
			},
			wantErr: true,
		},
		{
			name: "transfer with category",
			mutate: func(tx *Transaction) {
				tx.Type = TxTransfer
				tx.ToWalletID = &toW2
			},
			wantErr: true,
		},
		{
			name:    "unknown type",
			mutate:  func(tx *Transaction) { tx.Type = "refund" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr {
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
