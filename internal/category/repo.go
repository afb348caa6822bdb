// Package category manages the lookup table classifying income and expense
// entries. Categories are global rows with no lifecycle beyond create/list.
package category

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (r *Repository) Create(ctx context.Context, req CreateCategoryRequest) (domain.Category, error) {
	if req.Name == "" {
		return domain.Category{}, apperr.Validation("name is required")
	}
	typ, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return domain.Category{}, err
	}

	var c domain.Category
	err = r.Pool.QueryRow(ctx, `
INSERT INTO categories (name, type, color, icon)
VALUES ($1, $2, COALESCE(NULLIF($3,''),'#6B7280'), COALESCE(NULLIF($4,''),'tag'))
RETURNING id::text, name, type, color, icon, created_at`,
		req.Name, string(typ), req.Color, req.Icon,
	).Scan(&c.ID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Category{}, apperr.Conflict("category already exists")
		}
		return domain.Category{}, err
	}
	return c, nil
}

// List returns categories, optionally narrowed to one transaction type.
func (r *Repository) List(ctx context.Context, typ string) ([]domain.Category, error) {
	sql := `SELECT id::text, name, type, color, icon, created_at FROM categories`
	args := []any{}
	if typ != "" {
		if _, err := domain.ParseTransactionType(typ); err != nil {
			return nil, err
		}
		args = append(args, typ)
		sql += ` WHERE type = $1`
	}
	sql += ` ORDER BY name`

	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
