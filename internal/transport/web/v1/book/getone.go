package book

import (
	"net/http"

	"github.com/EgorLis/my-books/internal/transport/web/logx"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-books/internal/transport/web/v1"
)

// GetOne godoc
// @Summary     Get book
// @Tags        books
// @Produce     json
// @Param       id  path     string true "book id"
// @Success     200 {object} domain.Book
// @Failure     400 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/books/{id} [get]
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	const op = "books.getone"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := bookID(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad id", err, "id", r.PathValue("id"))
		v1.WriteDomainError(w, r, err)
		return
	}
	b, err := h.Books.GetByID(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "get failed", err, "id", id)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOK(w, r, b)
}
