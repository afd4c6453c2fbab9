package mw

import (
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/my-books/internal/transport/web/logx"
)

const opHTTP = "http.request"

// Logging пишет одну строку на запрос; 5xx пишутся с lvl=error.
func Logging(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			mw := &metaWriter{ResponseWriter: w}

			next.ServeHTTP(mw, r)

			if mw.status == 0 {
				mw.status = http.StatusOK
			}
			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", mw.status,
				"size", mw.size,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if uid, ok := userFromRequest(mw); ok {
				kv = append(kv, "user_id", uid)
			}
			reqID := RequestIDFromCtx(r.Context())
			if mw.status >= http.StatusInternalServerError {
				logx.Error(l, reqID, opHTTP, "request failed", nil, kv...)
				return
			}
			logx.Info(l, reqID, opHTTP, "request served", kv...)
		})
	}
}
