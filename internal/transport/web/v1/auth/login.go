package auth

import (
	"fmt"
	"net/http"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/transport/web/logx"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-books/internal/transport/web/v1"
)

// Login godoc
// @Summary     Authenticate user
// @Description Возвращает userId и JWT при валидных email и пароле.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body credentials true "email, password"
// @Success     200 {object} users.LoginResult
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	req, err := decodeCredentials(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad body", err)
		v1.WriteDomainError(w, r, fmt.Errorf("%w: malformed body", domain.ErrBadParams))
		return
	}

	res, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		logx.Error(h.Log, reqID, op, "login failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", res.UserID)
	v1.WriteOK(w, r, res)
}
