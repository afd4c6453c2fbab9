package book

import (
	"fmt"
	"net/http"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/service/books"
	"github.com/EgorLis/my-books/internal/transport/web/logx"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-books/internal/transport/web/v1"
)

// Create godoc
// @Summary     Create book
// @Description multipart: book (JSON метаданные) + image (обложка, запасное имя поля — file).
// @Description С Bearer-токеном владелец — пользователь токена, без него — userId из метаданных.
// @Tags        books
// @Accept      multipart/form-data
// @Produce     json
// @Param       book  formData string true "JSON: userId, title, author, year, genre, ratings"
// @Param       image formData file   true "cover image"
// @Success     201 {object} domain.Book
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/books [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "books.create"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if !isMultipart(r) {
		v1.WriteDomainError(w, r, fmt.Errorf("%w: multipart/form-data expected", domain.ErrBadParams))
		return
	}
	cleanup, err := h.parseMultipart(w, r, reqID, op)
	defer cleanup()
	if err != nil {
		logx.Error(h.Log, reqID, op, "parse form failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	var in domain.BookInput
	ok, err := decodeField(r, fieldBook, &in)
	if err == nil && !ok {
		err = fmt.Errorf("%w: book field is required", domain.ErrBadParams)
	}
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad book field", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	var authUser *domain.UserID
	if uid, ok := domain.UserFromCtx(r.Context()); ok {
		authUser = &uid
	}
	owner, err := books.ResolveOwner(authUser, in.UserID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "owner rejected", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	up, closeFile, err := formUpload(r)
	defer closeFile()
	if err != nil {
		logx.Error(h.Log, reqID, op, "read image failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	b, err := h.Books.Create(r.Context(), owner, in, up, h.origin(r))
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err, "owner", owner)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "id", b.ID, "owner", owner)
	v1.WriteCreated(w, r, b)
}
