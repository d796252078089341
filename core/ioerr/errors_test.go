package ioerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindMatching(t *testing.T) {
	err := New(KindTimeout, "connect", "deadline elapsed")
	require.True(t, errors.Is(err, ErrTimeout))
	require.True(t, errors.Is(err, ErrConnection))
	require.False(t, errors.Is(err, ErrRefused))
	require.Equal(t, KindTimeout, KindOf(err))
	require.True(t, IsTimeout(err))

	err = New(KindBounds, "read", "too long")
	require.False(t, errors.Is(err, ErrConnection))
	require.True(t, errors.Is(err, ErrBounds))
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap(KindIO, "write", nil))

	cause := errors.New("broken pipe")
	err := Wrap(KindIO, "write", cause)
	require.True(t, errors.Is(err, cause))
	require.True(t, errors.Is(err, ErrIO))
	require.Equal(t, "write: i/o failure: broken pipe", err.Error())

	// same kind is not wrapped twice
	require.Equal(t, err, Wrap(KindIO, "flush", err))

	// a wrapped error keeps its outermost kind
	outer := fmt.Errorf("context: %w", Wrap(KindState, "read", cause))
	require.Equal(t, KindState, KindOf(outer))
	require.Equal(t, KindIO, KindOf(cause))
	require.Equal(t, Kind(0), KindOf(nil))
}

func TestCheckBounds(t *testing.T) {
	buf := make([]byte, 10)
	require.NoError(t, CheckBounds("op", buf, 0, 10))
	require.NoError(t, CheckBounds("op", buf, 10, 0))
	require.NoError(t, CheckBounds("op", []byte{}, 0, 0))
	require.ErrorIs(t, CheckBounds("op", buf, 5, 6), ErrBounds)
	require.ErrorIs(t, CheckBounds("op", buf, -1, 2), ErrBounds)
	require.ErrorIs(t, CheckBounds("op", buf, 2, -1), ErrBounds)
	require.ErrorIs(t, CheckBounds("op", nil, 0, 0), ErrNull)
}
