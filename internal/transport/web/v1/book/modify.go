package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/service/books"
	"github.com/EgorLis/my-books/internal/transport/web/logx"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-books/internal/transport/web/v1"
)

// Modify godoc
// @Summary     Modify book
// @Description Только владелец. JSON-тело с изменяемыми полями либо multipart: book (JSON) + image.
// @Tags        books
// @Accept      json
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       id    path     string           true  "book id"
// @Param       patch body     domain.BookPatch false "fields to change"
// @Success     200 {object} domain.Book
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/books/{id} [put]
func (h *Handler) Modify(w http.ResponseWriter, r *http.Request) {
	const op = "books.modify"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

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

	var (
		patch domain.BookPatch
		up    *books.Upload
	)
	if isMultipart(r) {
		cleanup, err := h.parseMultipart(w, r, reqID, op)
		defer cleanup()
		if err != nil {
			logx.Error(h.Log, reqID, op, "parse form failed", err)
			v1.WriteDomainError(w, r, err)
			return
		}
		if _, err := decodeField(r, fieldBook, &patch); err != nil {
			v1.WriteDomainError(w, r, err)
			return
		}
		var closeFile func()
		up, closeFile, err = formUpload(r)
		defer closeFile()
		if err != nil {
			v1.WriteDomainError(w, r, err)
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil && !errors.Is(err, io.EOF) {
			logx.Error(h.Log, reqID, op, "bad json", err)
			v1.WriteDomainError(w, r, fmt.Errorf("%w: malformed JSON body", domain.ErrBadParams))
			return
		}
	}

	b, err := h.Books.Modify(r.Context(), id, me, patch, up, h.origin(r))
	if err != nil {
		logx.Error(h.Log, reqID, op, "modify failed", err, "id", id, "user_id", me)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "id", id)
	v1.WriteOK(w, r, b)
}
