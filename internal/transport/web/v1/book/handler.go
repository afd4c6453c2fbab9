package book

import (
	"context"
	"log"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/service/books"
)

type Service interface {
	ListAll(ctx context.Context) ([]domain.Book, error)
	GetByID(ctx context.Context, id domain.BookID) (domain.Book, error)
	BestRated(ctx context.Context, limit int) ([]domain.Book, error)
	Create(ctx context.Context, owner domain.UserID, in domain.BookInput, up *books.Upload, origin string) (domain.Book, error)
	Modify(ctx context.Context, id domain.BookID, requester domain.UserID, patch domain.BookPatch, up *books.Upload, origin string) (domain.Book, error)
	Delete(ctx context.Context, id domain.BookID, requester domain.UserID) error
	Rate(ctx context.Context, id domain.BookID, rater domain.UserID, grade int) (domain.Book, error)
}

// Handler обрабатывает /api/books/*
type Handler struct {
	Log   *log.Logger
	Books Service

	MaxUploadBytes int64
	PublicBaseURL  string // пусто — берём из запроса
}
