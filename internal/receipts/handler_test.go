package receipts

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
)

func TestOwnsPath(t *testing.T) {
	const uid = "9a8b0000-0000-0000-0000-0000000000aa"

	assert.True(t, ownsPath(uid, uid+"/1700000000-receipt.jpg"))
	assert.False(t, ownsPath(uid, "someone-else/1700000000-receipt.jpg"))
	assert.False(t, ownsPath(uid, uid))
	assert.False(t, ownsPath(uid, ""))
}

type visibilityRow struct{ visible bool }

func (r visibilityRow) Scan(dest ...any) error {
	*dest[0].(*bool) = r.visible
	return nil
}

type visibilityQueryer struct {
	visible bool
	queried bool
}

func (q *visibilityQueryer) QueryRow(context.Context, string, ...any) pgx.Row {
	q.queried = true
	return visibilityRow{visible: q.visible}
}

func TestDownloadAuthorize(t *testing.T) {
	ctx := context.Background()
	const uid = "9a8b0000-0000-0000-0000-0000000000aa"

	t.Run("uploader skips the visibility lookup", func(t *testing.T) {
		q := &visibilityQueryer{}
		h := &Handler{DB: q}
		require.NoError(t, h.authorize(ctx, uid, uid+"/1700000000-receipt.jpg"))
		assert.False(t, q.queried)
	})

	t.Run("collaborator with a visible transaction", func(t *testing.T) {
		q := &visibilityQueryer{visible: true}
		h := &Handler{DB: q}
		require.NoError(t, h.authorize(ctx, uid, "other-user/1700000000-receipt.jpg"))
		assert.True(t, q.queried)
	})

	t.Run("unrelated or revoked user is forbidden", func(t *testing.T) {
		h := &Handler{DB: &visibilityQueryer{visible: false}}
		err := h.authorize(ctx, uid, "other-user/1700000000-receipt.jpg")
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})
}
