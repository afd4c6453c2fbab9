package web

import (
	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	"github.com/EgorLis/my-books/internal/transport/web/v1/auth"
	"github.com/EgorLis/my-books/internal/transport/web/v1/book"
	"github.com/EgorLis/my-books/internal/transport/web/v1/health"
)

// Services — то, что HTTP-слой получает от app
type Services struct {
	Users  UsersService
	Books  book.Service
	Tokens mw.TokenVerifier
}

type UsersService interface {
	auth.Service
	mw.TokenVerifier
}

// Infra — зависимости для /images и health-проб
type Infra struct {
	DB      health.Pinger
	Storage domain.BlobStorage
	Cache   health.Pinger // nil — кеш выключен
}
