package web

import (
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/EgorLis/my-books/internal/docs"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	"github.com/EgorLis/my-books/internal/transport/web/v1/auth"
	"github.com/EgorLis/my-books/internal/transport/web/v1/book"
	"github.com/EgorLis/my-books/internal/transport/web/v1/health"
	"github.com/EgorLis/my-books/internal/transport/web/v1/image"
)

type handlers struct {
	health *health.Handler
	auth   *auth.Handler
	books  *book.Handler
	images *image.Handler
}

func newRouter(h handlers, tokens mw.TokenVerifier, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /api/healthz", h.health.Liveness)
	mux.HandleFunc("GET /api/readyz", h.health.Readiness)

	// auth
	mux.HandleFunc("POST /api/auth/signup", limitBody(1<<20, h.auth.Signup))
	mux.HandleFunc("POST /api/auth/login", limitBody(1<<20, h.auth.Login))

	// books
	mux.HandleFunc("GET /api/books", h.books.List)
	mux.HandleFunc("GET /api/books/bestrating", h.books.BestRating)
	mux.HandleFunc("GET /api/books/{id}", h.books.GetOne)
	mux.Handle("POST /api/books", mw.OptionalAuth(tokens, http.HandlerFunc(h.books.Create)))
	mux.Handle("PUT /api/books/{id}", mw.RequireAuth(tokens, http.HandlerFunc(h.books.Modify)))
	mux.Handle("DELETE /api/books/{id}", mw.RequireAuth(tokens, http.HandlerFunc(h.books.Delete)))
	mux.Handle("POST /api/books/{id}/rating", mw.RequireAuth(tokens, http.HandlerFunc(h.books.Rate)))

	// обложки
	mux.HandleFunc("GET /images/{name}", h.images.Get)

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mw.CORS(mux)))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
