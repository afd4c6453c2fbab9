package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/service/users"
)

type Service interface {
	Signup(ctx context.Context, email, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (users.LoginResult, error)
}

// Handler обрабатывает /api/auth/*
type Handler struct {
	Log   *log.Logger
	Users Service
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// decodeCredentials принимает JSON или форму
func decodeCredentials(r *http.Request) (credentials, error) {
	var req credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Email = r.FormValue("email")
	req.Password = r.FormValue("password")
	return req, nil
}
