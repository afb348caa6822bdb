package sharing

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
)

// candidate is a user row considered during share-target resolution.
type candidate struct {
	ID       string
	Email    string
	FullName string
}

// resolveTarget maps a share target (email or full name) to exactly one
// user id. The rule is deterministic: an exact case-insensitive email match
// wins, then an exact case-insensitive full-name match; otherwise partial
// name matches are only accepted when unique. Several partial matches with
// no exact one is an ambiguous target, zero matches is not found.
func (d *Directory) resolveTarget(ctx context.Context, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", apperr.Validation("share target is required")
	}

	var id string
	err := d.Pool.QueryRow(ctx,
		`SELECT id::text FROM users WHERE lower(email) = lower($1)`, target,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	rows, err := d.Pool.Query(ctx, `
SELECT id::text, email, COALESCE(full_name, '')
FROM users
WHERE full_name ILIKE '%' || $1 || '%'
ORDER BY created_at
LIMIT 10`, escapeLike(target))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var candidates []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.ID, &c.Email, &c.FullName); err != nil {
			return "", err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return pickCandidate(target, candidates)
}

// escapeLike neutralizes LIKE metacharacters so a target of "%" cannot
// match every user.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// pickCandidate applies the matching rule to an already-fetched candidate
// list. Split out so the rule is testable without a database.
func pickCandidate(target string, candidates []candidate) (string, error) {
	if len(candidates) == 0 {
		return "", apperr.NotFound("user not found")
	}
	if len(candidates) == 1 {
		return candidates[0].ID, nil
	}

	var exact []candidate
	for _, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(c.FullName), target) {
			exact = append(exact, c)
		}
	}
	if len(exact) == 1 {
		return exact[0].ID, nil
	}
	return "", apperr.AmbiguousTarget("several users match; use their email address")
}
