package sharing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Budi", "Budi"},
		{"%", `\%`},
		{"_udi", `\_udi`},
		{`50% off\`, `50\% off\\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in), "escapeLike(%q)", tt.in)
	}
}

func TestPickCandidate(t *testing.T) {
	budi := candidate{ID: "u1", Email: "budi@example.com", FullName: "Budi Santoso"}
	budiW := candidate{ID: "u2", Email: "budi.w@example.com", FullName: "Budi Wijaya"}
	budiDup := candidate{ID: "u3", Email: "other.budi@example.com", FullName: "Budi Santoso"}

	t.Run("no matches is not found", func(t *testing.T) {
		_, err := pickCandidate("Budi", nil)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("single match wins regardless of exactness", func(t *testing.T) {
		id, err := pickCandidate("Budi", []candidate{budiW})
		require.NoError(t, err)
		assert.Equal(t, "u2", id)
	})

	t.Run("exact full-name match breaks a tie", func(t *testing.T) {
		id, err := pickCandidate("budi santoso", []candidate{budi, budiW})
		require.NoError(t, err)
		assert.Equal(t, "u1", id)
	})

	t.Run("several partials without an exact match are ambiguous", func(t *testing.T) {
		_, err := pickCandidate("Budi", []candidate{budi, budiW})
		assert.Equal(t, apperr.KindAmbiguousTarget, apperr.KindOf(err))
	})

	t.Run("two identical full names stay ambiguous", func(t *testing.T) {
		_, err := pickCandidate("Budi Santoso", []candidate{budi, budiDup})
		assert.Equal(t, apperr.KindAmbiguousTarget, apperr.KindOf(err))
	})
}
