package imaging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-books/internal/domain"
)

func pngOf(t *testing.T, w, h int) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func TestOptimize_Downscales(t *testing.T) {
	out, err := New().Optimize(context.Background(), pngOf(t, 1600, 800))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestOptimize_NoUpscale(t *testing.T) {
	out, err := New().Optimize(context.Background(), pngOf(t, 200, 100))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestOptimize_Garbage(t *testing.T) {
	_, err := New().Optimize(context.Background(), bytes.NewReader([]byte("definitely not an image")))
	assert.ErrorIs(t, err, domain.ErrBadParams)
}

func TestStoredName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	testCases := []struct {
		in, want string
	}{
		{"my cover.png", "my_cover1700000000123_optimized.jpg"},
		{"../../etc/passwd", "passwd1700000000123_optimized.jpg"},
		{"C:\\pics\\book.jpeg", "book1700000000123_optimized.jpg"},
		{"", "cover1700000000123_optimized.jpg"},
		{"обложка.png", "cover1700000000123_optimized.jpg"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, StoredName(tc.in, now))
		})
	}
}
