package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(KindPrecondition, "ingest", "race %d has no result", 7)
	assert.Equal(t, "ingest: race 7 has no result", err.Error())

	bare := &Error{Kind: KindNotFound}
	assert.Equal(t, "not-found", bare.Error())
}

func TestKindMatching(t *testing.T) {
	base := New(KindNotFound, "store.GetRace", "race 3")
	wrapped := fmt.Errorf("loading race: %w", base)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(KindConflict, "op", nil))

	cause := errors.New("duplicate key")
	err := Wrap(KindConflict, "store.CreateUser", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "store.CreateUser: duplicate key", err.Error())
}
