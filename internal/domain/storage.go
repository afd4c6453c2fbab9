package domain

import (
	"context"
	"io"
	"time"
)

// Метаданные сохранённого объекта
type BlobInfo struct {
	Size        int64
	ContentType string
	ModTime     time.Time
	ETag        string
}

// Хранилище обложек (локальный диск или S3/MinIO)
type BlobStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open возвращает ErrNotFound, если объекта нет
	Open(ctx context.Context, key string) (io.ReadCloser, BlobInfo, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
