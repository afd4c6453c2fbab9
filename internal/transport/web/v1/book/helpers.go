package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/service/books"
	"github.com/EgorLis/my-books/internal/transport/web/logx"
)

// поля multipart-формы
const (
	fieldBook      = "book"
	fieldImage     = "image"
	fieldImageAlt  = "file"
	multipartInMem = 8 << 20
)

func bookID(r *http.Request) (domain.BookID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return domain.BookID{}, fmt.Errorf("%w: invalid book id", domain.ErrBadParams)
	}
	return id, nil
}

// origin — схема и хост для imageUrl
func (h *Handler) origin(r *http.Request) string {
	if h.PublicBaseURL != "" {
		return strings.TrimRight(h.PublicBaseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseMultipart ограничивает тело и разбирает форму. Временные файлы
// формы удаляются cleanup'ом; ошибки удаления только логируются.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request, reqID, op string) (cleanup func(), err error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartInMem); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return func() {}, fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrBadParams, tooBig.Limit)
		}
		return func() {}, fmt.Errorf("%w: malformed multipart body", domain.ErrBadParams)
	}
	return func() {
		if r.MultipartForm == nil {
			return
		}
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logx.Error(h.Log, reqID, op, "remove multipart temp files", err)
		}
	}, nil
}

// formUpload достаёт файл обложки (поле image или file); nil, если файла нет.
func formUpload(r *http.Request) (*books.Upload, func(), error) {
	for _, field := range []string{fieldImage, fieldImageAlt} {
		f, hdr, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, func() {}, fmt.Errorf("%w: read %s: %v", domain.ErrBadParams, field, err)
		}
		return uploadOf(f, hdr), func() { _ = f.Close() }, nil
	}
	return nil, func() {}, nil
}

func uploadOf(f multipart.File, hdr *multipart.FileHeader) *books.Upload {
	return &books.Upload{Reader: f, Filename: hdr.Filename, Size: hdr.Size}
}

// decodeField разбирает JSON из текстового поля формы.
func decodeField(r *http.Request, field string, dst any) (bool, error) {
	s := r.FormValue(field)
	if s == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		return true, fmt.Errorf("%w: %s is not valid JSON", domain.ErrBadParams, field)
	}
	return true, nil
}
