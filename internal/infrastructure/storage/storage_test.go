package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/trek-api/internal/infrastructure/storage"
	"github.com/jhoicas/trek-api/pkg/config"
)

func TestLocalStore_PutGet(t *testing.T) {
	defer filet.CleanUp(t)
	root := filet.TmpDir(t, "")

	s, err := storage.NewLocalStore(root)
	require.NoError(t, err)

	key := "contracts/ord-1/aditivo_r1.pdf"
	require.NoError(t, s.Put(t.Context(), key, []byte("%PDF-1.4 r1")))

	assert.True(t, filet.Exists(t, filepath.Join(root, "contracts", "ord-1", "aditivo_r1.pdf")))
	assert.True(t, filet.FileSays(t, filepath.Join(root, "contracts", "ord-1", "aditivo_r1.pdf"), []byte("%PDF-1.4 r1")))

	got, err := s.Get(t.Context(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 r1"), got)
}

func TestLocalStore_Overwrite(t *testing.T) {
	defer filet.CleanUp(t)
	s, err := storage.NewLocalStore(filet.TmpDir(t, ""))
	require.NoError(t, err)

	require.NoError(t, s.Put(t.Context(), "aditivo_52998224725_Galaxy_S23.pdf", []byte("v1")))
	require.NoError(t, s.Put(t.Context(), "aditivo_52998224725_Galaxy_S23.pdf", []byte("v2")))

	got, err := s.Get(t.Context(), "aditivo_52998224725_Galaxy_S23.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestLocalStore_Errors(t *testing.T) {
	defer filet.CleanUp(t)
	s, err := storage.NewLocalStore(filet.TmpDir(t, ""))
	require.NoError(t, err)

	_, err = s.Get(t.Context(), "contracts/nope.pdf")
	require.ErrorIs(t, err, storage.ErrNotFound)

	for _, key := range []string{"", "/etc/passwd", "../fuera.pdf", "contracts/../../x.pdf"} {
		require.ErrorIs(t, s.Put(t.Context(), key, []byte("x")), storage.ErrInvalidKey, key)
	}
}

func TestNew(t *testing.T) {
	defer filet.CleanUp(t)

	s, err := storage.New(config.StorageConfig{Driver: "local", LocalDir: filet.TmpDir(t, "")})
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStore{}, s)

	_, err = storage.New(config.StorageConfig{Driver: "minio"})
	require.Error(t, err, "minio sin endpoint")

	_, err = storage.New(config.StorageConfig{Driver: "ftp"})
	require.Error(t, err)
}
