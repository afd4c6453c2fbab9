package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
)

// MapDomainError решает HTTP-статус + error.code/text для конверта.
// Для клиентских ошибок text — пояснение без имени сентинела, для 500 — общее "unexpected".
func MapDomainError(err error) (httpStatus int, env domain.APIEnvelope) {
	switch {
	case errors.Is(err, domain.ErrDuplicateRating):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeDuplicateRating, "book already rated by this user")
	case errors.Is(err, domain.ErrBadParams):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeBadParams, detail(err, domain.ErrBadParams, "bad params"))
	case errors.Is(err, domain.ErrUnauth):
		return http.StatusUnauthorized, domain.Fail(domain.ErrCodeUnauth, detail(err, domain.ErrUnauth, "unauthorized"))
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.Fail(domain.ErrCodeForbidden, detail(err, domain.ErrForbidden, "forbidden"))
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, domain.Fail(domain.ErrCodeMethodNotAllowed, "method not allowed")
	case errors.Is(err, domain.ErrNotFound):
		if d := detail(err, domain.ErrNotFound, ""); d != "" {
			return http.StatusNotFound, domain.Fail(domain.ErrCodeNotFound, d+" not found")
		}
		return http.StatusNotFound, domain.Fail(domain.ErrCodeNotFound, "not found")
	default:
		// Таймауты/отмены тоже 500
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodeUnexpected, "unexpected")
	}
}

// detail достаёт пояснение после сентинела: "unauthorized: token is expired: ..."
// превращается в "token is expired". Технический хвост отбрасывается.
func detail(err, sentinel error, fallback string) string {
	s := err.Error()
	if k := strings.Index(s, sentinel.Error()+": "); k >= 0 {
		s = s[k+len(sentinel.Error())+2:]
	} else {
		return fallback
	}
	if k := strings.Index(s, ": "); k >= 0 {
		s = s[:k]
	}
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// WriteEnvelope пишет конверт ошибки; для HEAD — без тела
func WriteEnvelope(w http.ResponseWriter, r *http.Request, status int, env domain.APIEnvelope) {
	WriteJSON(w, r, status, env)
}

// WriteJSON пишет тело успешного ответа как есть
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(mw.HeaderRequestID, mw.RequestIDFromCtx(r.Context()))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Шорткаты успеха
func WriteOK(w http.ResponseWriter, r *http.Request, v any) {
	WriteJSON(w, r, http.StatusOK, v)
}

func WriteCreated(w http.ResponseWriter, r *http.Request, v any) {
	WriteJSON(w, r, http.StatusCreated, v)
}

func WriteMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, r, status, domain.Message{Message: msg})
}

// Шорткаты ошибок
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, env := MapDomainError(err)
	WriteEnvelope(w, r, status, env)
}
