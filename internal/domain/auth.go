package domain

import (
	"context"
	"time"
)

type Token string

type TokenClaims struct {
	UserID    UserID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Хеширование паролей (bcrypt / argon2id — реализация в internal/auth/password)
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}

// Управление токенами (JWT — реализация в internal/auth/token)
type TokenManager interface {
	Issue(ctx context.Context, userID UserID) (Token, TokenClaims, error)
	Parse(ctx context.Context, t Token) (TokenClaims, error)
}
