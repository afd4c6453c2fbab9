package book

import (
	"net/http"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/transport/web/logx"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-books/internal/transport/web/v1"
)

// Delete godoc
// @Summary     Delete book
// @Description Только владелец. Обложка удаляется в фоне.
// @Tags        books
// @Produce     json
// @Security    BearerAuth
// @Param       id  path     string true "book id"
// @Success     200 {object} domain.Message
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/books/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "books.delete"
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

	if err := h.Books.Delete(r.Context(), id, me); err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "id", id, "user_id", me)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "id", id)
	v1.WriteMessage(w, r, http.StatusOK, "book deleted")
}
