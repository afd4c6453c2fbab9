// Package users — регистрация, вход и проверка токенов.
package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/EgorLis/my-books/internal/domain"
)

type Service struct {
	repo   domain.UsersRepo
	hasher domain.PasswordHasher
	tokens domain.TokenManager
	logger *log.Logger
}

func New(repo domain.UsersRepo, hasher domain.PasswordHasher, tokens domain.TokenManager, logger *log.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, logger: logger}
}

type LoginResult struct {
	UserID domain.UserID `json:"userId"`
	Token  domain.Token  `json:"token"`
}

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauth)

func (s *Service) Signup(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if !domain.ValidEmail(email) {
		return domain.User{}, fmt.Errorf("%w: invalid email", domain.ErrBadParams)
	}
	if !domain.ValidPassword(password) {
		return domain.User{}, fmt.Errorf("%w: password must be 1 to %d bytes", domain.ErrBadParams, domain.MaxPasswordBytes)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.CreateUser(ctx, email, []byte(hash))
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Printf("user signed up id=%s", u.ID)
	return u, nil
}

// Login не различает «нет такого email» и «неверный пароль».
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, errInvalidCredentials
	}

	u, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return LoginResult{}, errInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	ok, err := s.hasher.Verify(password, string(u.PassHash))
	if err != nil {
		s.logger.Printf("verify password id=%s: %v", u.ID, err)
		return LoginResult{}, errInvalidCredentials
	}
	if !ok {
		return LoginResult{}, errInvalidCredentials
	}

	tok, _, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{UserID: u.ID, Token: tok}, nil
}

// VerifyToken проверяет подпись и срок, без побочных эффектов.
func (s *Service) VerifyToken(ctx context.Context, raw domain.Token) (domain.UserID, error) {
	cl, err := s.tokens.Parse(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnauth) {
			return domain.UserID{}, err
		}
		return domain.UserID{}, fmt.Errorf("%w: %v", domain.ErrUnauth, err)
	}
	return cl.UserID, nil
}
