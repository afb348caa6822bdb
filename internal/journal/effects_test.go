package journal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
)

func strptr(s string) *string { return &s }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEffects(t *testing.T) {
	tests := []struct {
		name string
		tx   domain.Transaction
		want []Effect
	}{
		{
			name: "income credits its wallet",
			tx:   domain.Transaction{Type: domain.TxIncome, WalletID: "w1", Amount: dec("1000")},
			want: []Effect{{WalletID: "w1", Delta: dec("1000")}},
		},
		{
			name: "expense debits its wallet",
			tx:   domain.Transaction{Type: domain.TxExpense, WalletID: "w1", Amount: dec("250.50")},
			want: []Effect{{WalletID: "w1", Delta: dec("-250.50")}},
		},
		{
			name: "transfer debits source and credits destination",
			tx:   domain.Transaction{Type: domain.TxTransfer, WalletID: "w1", ToWalletID: strptr("w2"), Amount: dec("300")},
			want: []Effect{
				{WalletID: "w1", Delta: dec("-300")},
				{WalletID: "w2", Delta: dec("300")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Effects(tt.tx)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].WalletID, got[i].WalletID)
				assert.True(t, tt.want[i].Delta.Equal(got[i].Delta),
					"delta %s != %s", tt.want[i].Delta, got[i].Delta)
			}
		})
	}
}

func TestReversalCancelsEffects(t *testing.T) {
	txs := []domain.Transaction{
		{Type: domain.TxIncome, WalletID: "w1", Amount: dec("1000")},
		{Type: domain.TxExpense, WalletID: "w1", Amount: dec("99.99")},
		{Type: domain.TxTransfer, WalletID: "w1", ToWalletID: strptr("w2"), Amount: dec("42")},
	}

	for _, tx := range txs {
		net := Merge(append(Effects(tx), Reversal(tx)...))
		assert.Empty(t, net, "apply+reverse of %s must net to zero", tx.Type)
	}
}

func TestNetEffects(t *testing.T) {
	t.Run("amount change nets the difference", func(t *testing.T) {
		old := domain.Transaction{Type: domain.TxExpense, WalletID: "w1", Amount: dec("100")}
		upd := old
		upd.Amount = dec("150")

		net := NetEffects(old, upd)
		require.Len(t, net, 1)
		assert.Equal(t, "w1", net[0].WalletID)
		assert.True(t, net[0].Delta.Equal(dec("-50")))
	})

	t.Run("no change nets to nothing", func(t *testing.T) {
		old := domain.Transaction{Type: domain.TxIncome, WalletID: "w1", Amount: dec("100")}
		assert.Empty(t, NetEffects(old, old))
	})

	t.Run("transfer becoming expense releases the destination", func(t *testing.T) {
		old := domain.Transaction{Type: domain.TxTransfer, WalletID: "w1", ToWalletID: strptr("w2"), Amount: dec("100")}
		upd := domain.Transaction{Type: domain.TxExpense, WalletID: "w1", Amount: dec("100")}

		net := NetEffects(old, upd)
		// Source wallet already carries -100 from the transfer, so only the
		// destination's credit is pulled back.
		require.Len(t, net, 1)
		assert.Equal(t, "w2", net[0].WalletID)
		assert.True(t, net[0].Delta.Equal(dec("-100")))
	})

	t.Run("income flipped to expense doubles down", func(t *testing.T) {
		old := domain.Transaction{Type: domain.TxIncome, WalletID: "w1", Amount: dec("100")}
		upd := domain.Transaction{Type: domain.TxExpense, WalletID: "w1", Amount: dec("100")}

		net := NetEffects(old, upd)
		require.Len(t, net, 1)
		assert.True(t, net[0].Delta.Equal(dec("-200")))
	})

	t.Run("wallet move reverses one side and applies the other", func(t *testing.T) {
		old := domain.Transaction{Type: domain.TxExpense, WalletID: "w1", Amount: dec("70")}
		upd := domain.Transaction{Type: domain.TxExpense, WalletID: "w2", Amount: dec("70")}

		net := NetEffects(old, upd)
		require.Len(t, net, 2)
		// Ordered by wallet id for the fixed lock order.
		assert.Equal(t, "w1", net[0].WalletID)
		assert.True(t, net[0].Delta.Equal(dec("70")))
		assert.Equal(t, "w2", net[1].WalletID)
		assert.True(t, net[1].Delta.Equal(dec("-70")))
	})
}

func TestWalletIDsSortedAndDistinct(t *testing.T) {
	effects := []Effect{
		{WalletID: "w9", Delta: dec("1")},
		{WalletID: "w1", Delta: dec("2")},
		{WalletID: "w9", Delta: dec("3")},
	}
	assert.Equal(t, []string{"w1", "w9"}, WalletIDs(effects))
}

func TestDeleteRecreateRoundTrip(t *testing.T) {
	// Deleting an entry and re-creating an identical one must leave every
	// wallet where it started.
	tx := domain.Transaction{Type: domain.TxTransfer, WalletID: "a", ToWalletID: strptr("b"), Amount: dec("500")}

	balances := map[string]decimal.Decimal{"a": dec("1000"), "b": dec("0")}
	apply := func(effects []Effect) {
		for _, e := range effects {
			balances[e.WalletID] = balances[e.WalletID].Add(e.Delta)
		}
	}

	apply(Effects(tx))  // create
	apply(Reversal(tx)) // delete
	apply(Effects(tx))  // recreate
	apply(Reversal(tx)) // delete again

	assert.True(t, balances["a"].Equal(dec("1000")))
	assert.True(t, balances["b"].Equal(dec("0")))
}

func TestMergeUpdate(t *testing.T) {
	base := domain.Transaction{
		Type:        domain.TxTransfer,
		WalletID:    "w1",
		ToWalletID:  strptr("w2"),
		Amount:      dec("100"),
		Description: "move savings",
	}

	t.Run("type change away from transfer drops the destination", func(t *testing.T) {
		upd, err := mergeUpdate(base, UpdateTransactionRequest{Type: strptr("expense"), CategoryID: strptr("c1")})
		require.NoError(t, err)
		assert.Equal(t, domain.TxExpense, upd.Type)
		assert.Nil(t, upd.ToWalletID)
		require.NotNil(t, upd.CategoryID)
		assert.Equal(t, "c1", *upd.CategoryID)
		require.NoError(t, upd.Validate())
	})

	t.Run("type change to transfer sheds the category", func(t *testing.T) {
		exp := domain.Transaction{Type: domain.TxExpense, WalletID: "w1", CategoryID: strptr("c1"), Amount: dec("50"), Description: "groceries"}
		upd, err := mergeUpdate(exp, UpdateTransactionRequest{Type: strptr("transfer"), ToWalletID: strptr("w2")})
		require.NoError(t, err)
		assert.Equal(t, domain.TxTransfer, upd.Type)
		assert.Nil(t, upd.CategoryID)
		require.NoError(t, upd.Validate())
	})

	t.Run("invalid amount is rejected", func(t *testing.T) {
		_, err := mergeUpdate(base, UpdateTransactionRequest{Amount: strptr("-5")})
		assert.Error(t, err)
	})

	t.Run("untouched fields carry over", func(t *testing.T) {
		upd, err := mergeUpdate(base, UpdateTransactionRequest{Description: strptr("rent")})
		require.NoError(t, err)
		assert.Equal(t, "rent", upd.Description)
		assert.True(t, upd.Amount.Equal(base.Amount))
		assert.Equal(t, base.WalletID, upd.WalletID)
	})
}
