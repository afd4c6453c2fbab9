package disk

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-books/internal/domain"
)

func newStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "images")
	s, err := New(dir, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return s, dir
}

func TestStorage_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, dir := newStorage(t)
	require.NoError(t, s.Ping(ctx))

	payload := []byte("jpeg bytes")
	require.NoError(t, s.Put(ctx, "cover1_optimized.jpg", bytes.NewReader(payload), int64(len(payload)), "image/jpeg"))

	rc, info, err := s.Open(ctx, "cover1_optimized.jpg")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, got)
	assert.EqualValues(t, len(payload), info.Size)
	assert.Equal(t, "image/jpeg", info.ContentType)

	// временных файлов не осталось
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, s.Delete(ctx, "cover1_optimized.jpg"))
	require.NoError(t, s.Delete(ctx, "cover1_optimized.jpg"))

	_, _, err = s.Open(ctx, "cover1_optimized.jpg")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, _ := newStorage(t)

	for _, key := range []string{"../x.jpg", "a/b.jpg", "", ".hidden"} {
		err := s.Put(ctx, key, bytes.NewReader(nil), 0, "image/jpeg")
		assert.ErrorIs(t, err, domain.ErrBadParams, key)

		_, _, err = s.Open(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound, key)
	}
}
