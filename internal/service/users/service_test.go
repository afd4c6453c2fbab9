package users

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-books/internal/auth/password"
	"github.com/EgorLis/my-books/internal/auth/token"
	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/infra/database/memory"
)

func newService(t *testing.T) *Service {
	t.Helper()
	discard := log.New(io.Discard, "", 0)
	hasher, err := password.New(password.AlgoBcrypt, 4)
	require.NoError(t, err)
	return New(memory.New(discard), hasher, token.New("secret", "my-books", 24*time.Hour), discard)
}

func TestSignupLogin(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	u, err := s.Signup(ctx, "reader@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.NotEqual(t, "s3cret", string(u.PassHash))

	res, err := s.Login(ctx, "reader@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)
	require.NotEmpty(t, res.Token)

	uid, err := s.VerifyToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
}

func TestSignup_Validation(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	testCases := []struct {
		name, email, password string
	}{
		{"bad_email", "not-an-email", "pw"},
		{"empty_email", "", "pw"},
		{"empty_password", "a@b.c", ""},
		{"blank_password", "a@b.c", "   "},
		{"too_long_password", "a@b.c", strings.Repeat("x", 73)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Signup(ctx, tc.email, tc.password)
			assert.ErrorIs(t, err, domain.ErrBadParams)
		})
	}
}

func TestSignup_PasswordAtLimit(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	pw := strings.Repeat("x", domain.MaxPasswordBytes)

	_, err := s.Signup(ctx, "a@b.co", pw)
	require.NoError(t, err)
	res, err := s.Login(ctx, "a@b.co", pw)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestSignup_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.Signup(ctx, "reader@example.com", "one")
	require.NoError(t, err)
	_, err = s.Signup(ctx, "reader@example.com", "two")
	assert.ErrorIs(t, err, domain.ErrBadParams)
}

func TestLogin_SameErrorForUnknownAndWrong(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	_, err := s.Signup(ctx, "reader@example.com", "s3cret")
	require.NoError(t, err)

	_, errWrong := s.Login(ctx, "reader@example.com", "nope")
	_, errUnknown := s.Login(ctx, "ghost@example.com", "s3cret")

	assert.ErrorIs(t, errWrong, domain.ErrUnauth)
	assert.ErrorIs(t, errUnknown, domain.ErrUnauth)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestVerifyToken_Invalid(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.VerifyToken(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauth)

	other, _, err := token.New("other-secret", "my-books", time.Hour).Issue(ctx, uuid.New())
	require.NoError(t, err)
	_, err = s.VerifyToken(ctx, other)
	assert.ErrorIs(t, err, domain.ErrUnauth)
}
