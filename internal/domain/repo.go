package domain

import "context"

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	// ErrBadParams, если email уже занят
	CreateUser(ctx context.Context, email string, passHash []byte) (User, error)
	// ErrNotFound, если пользователя нет
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
}

type BooksRepo interface {
	Ping(context.Context) error
	// Все книги, createdAt ASC
	ListBooks(ctx context.Context) ([]Book, error)
	// Лучшие по averageRating DESC, createdAt ASC, id ASC
	BestRated(ctx context.Context, limit int) ([]Book, error)
	BookByID(ctx context.Context, id BookID) (Book, error)
	CreateBook(ctx context.Context, b Book) (Book, error)
	UpdateBook(ctx context.Context, id BookID, upd BookUpdate) (Book, error)
	DeleteBook(ctx context.Context, id BookID) error
	// Добавляет оценку и пересчитывает averageRating через AverageRating.
	// ErrNotFound — нет книги, ErrDuplicateRating — пользователь уже оценил.
	AddRating(ctx context.Context, id BookID, r Rating) (Book, error)
}
