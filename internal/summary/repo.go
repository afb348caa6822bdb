// Package summary is a read-side projection over the journal: income and
// expense totals for the dashboard. Transfers move money between wallets the
// user can already see, so they are excluded from both totals.
package summary

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct {
	Pool *pgxpool.Pool
}

type Summary struct {
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Net          string `json:"net"`
}

// GetByUser totals the caller's own entries, optionally narrowed to one
// YYYY-MM month.
func (r Repo) GetByUser(ctx context.Context, userID string, month string) (Summary, error) {
	sql := `
SELECT
	COALESCE(SUM(CASE WHEN type = 'income' THEN amount END), 0)::text,
	COALESCE(SUM(CASE WHEN type = 'expense' THEN amount END), 0)::text
FROM transactions
WHERE user_id = $1::uuid`
	args := []any{userID}

	if month != "" {
		args = append(args, month)
		sql += ` AND to_char(date, 'YYYY-MM') = $2`
	}

	var incomeStr, expenseStr string
	if err := r.Pool.QueryRow(ctx, sql, args...).Scan(&incomeStr, &expenseStr); err != nil {
		return Summary{}, err
	}

	income, err := decimal.NewFromString(incomeStr)
	if err != nil {
		return Summary{}, err
	}
	expense, err := decimal.NewFromString(expenseStr)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalIncome:  income.String(),
		TotalExpense: expense.String(),
		Net:          income.Sub(expense).String(),
	}, nil
}
