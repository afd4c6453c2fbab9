package domain

import (
	"context"
	"strconv"
)

// Ключи кеша — единое место, чтобы не расползались по коду.
const CacheKeyBestPrefix = "books:best:"

func CacheKeyBook(id BookID) string      { return "book:" + id.String() }
func CacheKeyBestRated(limit int) string { return CacheKeyBestPrefix + strconv.Itoa(limit) }

// Простой k/v интерфейс. Реализация — Redis.
// Get возвращает (nil, nil), если ключа нет.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	Del(ctx context.Context, keys ...string) error
	DelPrefix(ctx context.Context, prefix string) error
	Ping(context.Context) error
	Close()
}
