package auth

import (
	"fmt"
	"net/http"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/transport/web/logx"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-books/internal/transport/web/v1"
)

// Signup godoc
// @Summary     Register new user
// @Description Создаёт пользователя по email и паролю.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body credentials true "email, password"
// @Success     201 {object} domain.Message
// @Failure     400 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	const op = "auth.signup"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	req, err := decodeCredentials(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad body", err)
		v1.WriteDomainError(w, r, fmt.Errorf("%w: malformed body", domain.ErrBadParams))
		return
	}

	u, err := h.Users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		logx.Error(h.Log, reqID, op, "signup failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID)
	v1.WriteMessage(w, r, http.StatusCreated, "user created")
}
