package http

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
)

func TestSurvivorReversal(t *testing.T) {
	const (
		mine   = "aaaa0000-0000-0000-0000-000000000001"
		theirs = "bbbb0000-0000-0000-0000-000000000002"
	)
	owned := map[string]struct{}{mine: {}}
	to := func(s string) *string { return &s }

	t.Run("entries on own wallets produce nothing", func(t *testing.T) {
		entries := []domain.Transaction{
			{Type: domain.TxIncome, WalletID: mine, Amount: decimal.NewFromInt(1000)},
			{Type: domain.TxExpense, WalletID: mine, Amount: decimal.NewFromInt(250)},
		}
		assert.Empty(t, survivorReversal(entries, owned))
	})

	t.Run("expense on a shared wallet is credited back", func(t *testing.T) {
		entries := []domain.Transaction{
			{Type: domain.TxExpense, WalletID: theirs, Amount: decimal.NewFromInt(300)},
		}
		rev := survivorReversal(entries, owned)
		require.Len(t, rev, 1)
		assert.Equal(t, theirs, rev[0].WalletID)
		assert.True(t, rev[0].Delta.Equal(decimal.NewFromInt(300)))
	})

	t.Run("transfer into a surviving wallet pulls the credit back", func(t *testing.T) {
		entries := []domain.Transaction{
			{Type: domain.TxTransfer, WalletID: mine, ToWalletID: to(theirs), Amount: decimal.NewFromInt(500)},
		}
		rev := survivorReversal(entries, owned)
		require.Len(t, rev, 1)
		assert.Equal(t, theirs, rev[0].WalletID)
		assert.True(t, rev[0].Delta.Equal(decimal.NewFromInt(-500)))
	})

	t.Run("offsetting entries net to zero", func(t *testing.T) {
		entries := []domain.Transaction{
			{Type: domain.TxExpense, WalletID: theirs, Amount: decimal.NewFromInt(100)},
			{Type: domain.TxIncome, WalletID: theirs, Amount: decimal.NewFromInt(100)},
		}
		assert.Empty(t, survivorReversal(entries, owned))
	})
}
