package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("amount %d", 0)))
	assert.Equal(t, KindNotFound, KindOf(NotFound("pairing")))
	assert.Equal(t, KindStore, KindOf(Store("load pairing", errors.New("dial tcp"))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("adjust: %w", NotFound("pairing"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestStore_KeepsClassifiedErrors(t *testing.T) {
	nf := NotFound("family")
	assert.Same(t, nf, Store("load family", nf))
	assert.Nil(t, Store("noop", nil))
}

func TestPublicMessage(t *testing.T) {
	msg, ok := PublicMessage(NotFound("pairing"))
	assert.True(t, ok)
	assert.Equal(t, "pairing not found", msg)

	_, ok = PublicMessage(Store("write", errors.New("connection reset")))
	assert.False(t, ok)
}
