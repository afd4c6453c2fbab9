package book

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/transport/web/logx"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-books/internal/transport/web/v1"
)

type rateRequest struct {
	UserID string `json:"userId,omitempty"` // если задан — должен совпадать с токеном
	Rating *int   `json:"rating"`
}

// Rate godoc
// @Summary     Rate book
// @Description Одна оценка (0..5) на пользователя. Возвращает книгу с новым averageRating.
// @Tags        books
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path     string      true "book id"
// @Param       request body     rateRequest true "rating"
// @Success     200 {object} domain.Book
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/books/{id}/rating [post]
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	const op = "books.rate"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	id, err := bookID(r)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}

	var req rateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, fmt.Errorf("%w: malformed JSON body", domain.ErrBadParams))
		return
	}
	if req.Rating == nil {
		v1.WriteDomainError(w, r, fmt.Errorf("%w: rating is required", domain.ErrBadParams))
		return
	}
	if u := strings.TrimSpace(req.UserID); u != "" && u != me.String() {
		logx.Error(h.Log, reqID, op, "userId mismatch", domain.ErrForbidden, "user_id", me)
		v1.WriteDomainError(w, r, fmt.Errorf("%w: userId does not match token", domain.ErrForbidden))
		return
	}

	b, err := h.Books.Rate(r.Context(), id, me, *req.Rating)
	if err != nil {
		logx.Error(h.Log, reqID, op, "rate failed", err, "id", id, "user_id", me)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "id", id, "avg", b.AverageRating)
	v1.WriteOK(w, r, b)
}
