package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/EgorLis/my-books/internal/domain"
)

type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func New(secret string, issuer string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// внутренний тип для подписи/парсинга с jwt.RegisteredClaims
type jwtClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Ensure: Manager implements domain.TokenManager
var _ domain.TokenManager = (*Manager)(nil)

// Issue выпускает JWT и возвращает доменные клеймы
func (m *Manager) Issue(_ context.Context, userID domain.UserID) (domain.Token, domain.TokenClaims, error) {
	now := time.Now().UTC().Truncate(time.Second)

	cl := jwtClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	tokenStr, err := t.SignedString(m.secret)
	if err != nil {
		return "", domain.TokenClaims{}, err
	}

	return domain.Token(tokenStr), domain.TokenClaims{
		UserID:    userID,
		IssuedAt:  cl.IssuedAt.Time,
		ExpiresAt: cl.ExpiresAt.Time,
	}, nil
}

// Parse валидирует подпись/сроки и возвращает доменные клеймы.
// Любая ошибка оборачивается в domain.ErrUnauth.
func (m *Manager) Parse(_ context.Context, raw domain.Token) (domain.TokenClaims, error) {
	if raw == "" {
		return domain.TokenClaims{}, fmt.Errorf("%w: empty token", domain.ErrUnauth)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var out jwtClaims
	tkn, err := jwt.ParseWithClaims(string(raw), &out, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: %w", domain.ErrUnauth, err)
	}
	if !tkn.Valid {
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrUnauth, jwt.ErrTokenInvalidClaims)
	}

	uid, err := uuid.Parse(out.UserID)
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: bad userId claim", domain.ErrUnauth)
	}

	cl := domain.TokenClaims{UserID: uid}
	if out.IssuedAt != nil {
		cl.IssuedAt = out.IssuedAt.Time
	}
	if out.ExpiresAt != nil {
		cl.ExpiresAt = out.ExpiresAt.Time
	}
	return cl, nil
}

// IsExpired сообщает, что ошибка Parse вызвана истёкшим сроком токена.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
