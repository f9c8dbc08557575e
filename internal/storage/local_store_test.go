package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityconnect/internal/apperr"
	"cityconnect/internal/config"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(afero.NewMemMapFs())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "image-1.png", strings.NewReader("pixels"), 6, "image/png"))

	rc, err := store.Open(ctx, "image-1.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "pixels", string(data))

	images, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "image-1.png", images[0].Name)
	assert.Equal(t, int64(6), images[0].SizeBytes)

	require.NoError(t, store.Delete(ctx, "image-1.png"))
	_, err = store.Open(ctx, "image-1.png")
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLocalStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStore(afero.NewMemMapFs())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "image-404.gif"))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
