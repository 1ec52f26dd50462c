package blobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Put(ctx, "abc.pdf", []byte("report body"), "application/pdf")
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "abc.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := store.Get(ctx, "abc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("report body"), data)

	url, err := store.PresignedURL(ctx, "abc.pdf", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "abc.pdf")

	require.NoError(t, store.Delete(ctx, "abc.pdf"))
	ok, err = store.Exists(ctx, "abc.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.PresignedURL(ctx, "nope", time.Minute)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, "nope"))
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	src := []byte("original")
	require.NoError(t, store.Put(ctx, "k", src, "text/plain"))
	src[0] = 'X'

	data, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}
