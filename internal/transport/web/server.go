package web

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/EgorLis/my-books/internal/config"
	"github.com/EgorLis/my-books/internal/transport/web/v1/auth"
	"github.com/EgorLis/my-books/internal/transport/web/v1/book"
	"github.com/EgorLis/my-books/internal/transport/web/v1/health"
	"github.com/EgorLis/my-books/internal/transport/web/v1/image"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

// NewHandler собирает роутер со всеми middleware (используется сервером и тестами).
func NewHandler(logger *log.Logger, cfg *config.Config, svc Services, infra Infra) http.Handler {
	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	h := handlers{
		health: &health.Handler{Log: sub("health"), DB: infra.DB, Cache: infra.Cache, Storage: infra.Storage},
		auth:   &auth.Handler{Log: sub("auth"), Users: svc.Users},
		books: &book.Handler{
			Log:            sub("books"),
			Books:          svc.Books,
			MaxUploadBytes: cfg.MaxUploadMB << 20,
			PublicBaseURL:  cfg.PublicBaseURL,
		},
		images: &image.Handler{Log: sub("images"), Storage: infra.Storage},
	}
	tokens := svc.Tokens
	if tokens == nil {
		tokens = svc.Users
	}
	return newRouter(h, tokens, logger)
}

func New(logger *log.Logger, cfg *config.Config, svc Services, infra Infra) *Server {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.AppPort),
		Handler:           NewHandler(logger, cfg, svc, infra),
		ReadTimeout:       30 * time.Second, // multipart с обложкой
		WriteTimeout:      30 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
