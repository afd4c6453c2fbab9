package book

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/transport/web/logx"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-books/internal/transport/web/v1"
)

// List godoc
// @Summary     List books
// @Description Все книги в порядке создания.
// @Tags        books
// @Produce     json
// @Success     200 {array}  domain.Book
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/books [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "books.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	out, err := h.Books.ListAll(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "count", len(out))
	v1.WriteOK(w, r, out)
}

// BestRating godoc
// @Summary     Best rated books
// @Description Книги с наибольшей средней оценкой (по умолчанию 3).
// @Tags        books
// @Produce     json
// @Param       limit query int false "how many books, default 3, max 50"
// @Success     200 {array}  domain.Book
// @Failure     400 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/books/bestrating [get]
func (h *Handler) BestRating(w http.ResponseWriter, r *http.Request) {
	const op = "books.bestrating"
	reqID := mw.RequestIDFromCtx(r.Context())

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			logx.Error(h.Log, reqID, op, "bad limit", err, "limit", s)
			v1.WriteDomainError(w, r, fmt.Errorf("%w: limit must be a positive integer", domain.ErrBadParams))
			return
		}
		limit = n
	}

	out, err := h.Books.BestRated(r.Context(), limit)
	if err != nil {
		logx.Error(h.Log, reqID, op, "best rated failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "count", len(out))
	v1.WriteOK(w, r, out)
}
