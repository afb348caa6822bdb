package journal

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
)

// Effect is one signed balance delta a journal entry applies to a wallet.
type Effect struct {
	WalletID string
	Delta    decimal.Decimal
}

// Effects derives the balance deltas a transaction applies when recorded:
// income credits its wallet, expense debits it, a transfer debits the source
// and credits the destination by the same amount.
func Effects(t domain.Transaction) []Effect {
	switch t.Type {
	case domain.TxIncome:
		return []Effect{{WalletID: t.WalletID, Delta: t.Amount}}
	case domain.TxExpense:
		return []Effect{{WalletID: t.WalletID, Delta: t.Amount.Neg()}}
	case domain.TxTransfer:
		return []Effect{
			{WalletID: t.WalletID, Delta: t.Amount.Neg()},
			{WalletID: *t.ToWalletID, Delta: t.Amount},
		}
	}
	return nil
}

// Reversal is the exact inverse of Effects, applied when an entry is
// deleted or before its replacement effect on update.
func Reversal(t domain.Transaction) []Effect {
	effects := Effects(t)
	out := make([]Effect, len(effects))
	for i, e := range effects {
		out[i] = Effect{WalletID: e.WalletID, Delta: e.Delta.Neg()}
	}
	return out
}

// NetEffects folds reversal of the old entry and application of the new one
// into one delta per wallet, dropping wallets whose net delta is zero. The
// result is ordered by wallet id so callers lock deterministically.
func NetEffects(old, updated domain.Transaction) []Effect {
	return Merge(append(Reversal(old), Effects(updated)...))
}

// Merge folds a list of effects into at most one delta per wallet, dropping
// zero nets, ordered by wallet id.
func Merge(effects []Effect) []Effect {
	byWallet := make(map[string]decimal.Decimal, len(effects))
	for _, e := range effects {
		byWallet[e.WalletID] = byWallet[e.WalletID].Add(e.Delta)
	}

	out := make([]Effect, 0, len(byWallet))
	for id, delta := range byWallet {
		if delta.IsZero() {
			continue
		}
		out = append(out, Effect{WalletID: id, Delta: delta})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WalletID < out[j].WalletID })
	return out
}

// WalletIDs lists the distinct wallets a set of effects touches, sorted
// ascending for the fixed lock order.
func WalletIDs(effects []Effect) []string {
	seen := make(map[string]struct{}, len(effects))
	out := make([]string, 0, len(effects))
	for _, e := range effects {
		if _, ok := seen[e.WalletID]; ok {
			continue
		}
		seen[e.WalletID] = struct{}{}
		out = append(out, e.WalletID)
	}
	sort.Strings(out)
	return out
}
