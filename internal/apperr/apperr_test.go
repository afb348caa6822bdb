package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("wallet not found")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))

	// The kind survives wrapping with %w further up the stack.
	wrapped := fmt.Errorf("share: %w", AlreadyShared("wallet already shared with this user"))
	assert.Equal(t, KindAlreadyShared, KindOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, "query wallets", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(SelfShare("cannot share a wallet with yourself"), KindSelfShare))
	assert.False(t, IsKind(nil, KindInternal))
	assert.False(t, IsKind(Forbidden("not your wallet"), KindNotFound))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, 404},
		{KindForbidden, 403},
		{KindValidation, 400},
		{KindSelfShare, 400},
		{KindConflict, 409},
		{KindAlreadyShared, 409},
		{KindAmbiguousTarget, 409},
		{KindInternal, 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.kind), "kind %s", tt.kind)
	}
}
