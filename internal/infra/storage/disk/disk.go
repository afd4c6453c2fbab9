// Package disk хранит обложки в локальном каталоге.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/EgorLis/my-books/internal/domain"
)

type Storage struct {
	dir    string
	logger *log.Logger
}

var _ domain.BlobStorage = (*Storage)(nil)

func New(dir string, logger *log.Logger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	logger.Printf("images dir %q ready", dir)
	return &Storage{dir: dir, logger: logger}, nil
}

// path не даёт ключу выйти за пределы каталога.
func (s *Storage) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: bad object key %q", domain.ErrBadParams, key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		// после успешного Rename файла уже нет
		_ = os.Remove(tmp.Name())
	}()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.logger.Printf("PUT %q failed: %v", key, err)
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename %q: %w", key, err)
	}
	s.logger.Printf("PUT %q ok (%d bytes)", key, n)
	return nil
}

func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, domain.BlobInfo, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, domain.BlobInfo{}, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.BlobInfo{}, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return nil, domain.BlobInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, domain.BlobInfo{}, err
	}
	ct := mime.TypeByExtension(filepath.Ext(key))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return f, domain.BlobInfo{Size: st.Size(), ContentType: ct, ModTime: st.ModTime()}, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Printf("DEL %q: already absent", key)
		return nil
	}
	if err != nil {
		s.logger.Printf("DEL %q failed: %v", key, err)
		return err
	}
	s.logger.Printf("DEL %q ok", key)
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	st, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
