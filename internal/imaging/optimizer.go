// Package imaging приводит загруженные обложки к единому виду:
// ширина не больше MaxWidth, JPEG с качеством Quality.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/EgorLis/my-books/internal/domain"
)

const (
	MaxWidth    = 800
	Quality     = 80
	ContentType = "image/jpeg"
	suffix      = "_optimized.jpg"
)

type Optimizer struct {
	maxWidth int
	quality  int
}

func New() *Optimizer {
	return &Optimizer{maxWidth: MaxWidth, quality: Quality}
}

// Optimize декодирует изображение, уменьшает до maxWidth с сохранением
// пропорций и кодирует в JPEG. Маленькие картинки не увеличиваются.
func (o *Optimizer) Optimize(ctx context.Context, src io.Reader) ([]byte, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported image: %v", domain.ErrBadParams, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if img.Bounds().Dx() > o.maxWidth {
		img = imaging.Resize(img, o.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(o.quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// StoredName строит имя оптимизированного файла:
// <очищенное имя без расширения><unix ms>_optimized.jpg
func StoredName(original string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, " ", "_")
	base = unsafeChars.ReplaceAllString(base, "")
	base = strings.Trim(base, ".")
	if base == "" {
		base = "cover"
	}
	return base + strconv.FormatInt(now.UnixMilli(), 10) + suffix
}
