package telemetry

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoggingStoreLogsErrors(t *testing.T) {
	var buf bytes.Buffer
	inner := newFakeStore()
	inner.err = errors.New("boom")

	store := NewLoggingStore(inner, "nodes").WithLogger(zerolog.New(&buf))
	_, _, err := store.Get([]byte("k"))
	require.Error(t, err)
	require.Contains(t, buf.String(), "store operation failed")
	require.Contains(t, buf.String(), "\"op\":\"get\"")
}

func TestLoggingStoreIsQuietOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	inner := newFakeStore()
	store := NewLoggingStore(inner, "values").WithLogger(zerolog.New(&buf))

	require.NoError(t, store.Set([]byte("k"), []byte("v")))
	require.Empty(t, buf.String())
}
