package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/EgorLis/my-books/internal/domain"
)

// TokenVerifier — проверка токена (users.Service)
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw domain.Token) (domain.UserID, error)
}

const unauthorizedBody = `{"error":{"code":1001,"text":"unauthorized"}}` + "\n"

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(unauthorizedBody))
}

// OptionalAuth пропускает запрос без заголовка Authorization, но
// отклоняет присланный и невалидный токен.
func OptionalAuth(v TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			next.ServeHTTP(w, r) // без пользователя
			return
		}
		uid, err := verify(r.Context(), v, h)
		if err != nil {
			writeUnauthorized(w)
			return
		}
		markUser(w, uid)
		next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), uid)))
	})
}

func RequireAuth(v TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := verify(r.Context(), v, r.Header.Get("Authorization"))
		if err != nil {
			writeUnauthorized(w)
			return
		}
		markUser(w, uid)
		next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), uid)))
	})
}

func verify(ctx context.Context, v TokenVerifier, header string) (domain.UserID, error) {
	raw := extractBearer(header)
	if raw == "" {
		return domain.UserID{}, domain.ErrUnauth
	}
	return v.VerifyToken(ctx, domain.Token(raw))
}

func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
