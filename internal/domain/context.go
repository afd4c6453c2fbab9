package domain

import "context"

// Ключ для хранения аутентифицированного пользователя в контексте HTTP-запроса
type ctxKey int

const userCtxKey ctxKey = 1

func WithUser(ctx context.Context, id UserID) context.Context {
	return context.WithValue(ctx, userCtxKey, id)
}

func UserFromCtx(ctx context.Context) (UserID, bool) {
	u, ok := ctx.Value(userCtxKey).(UserID)
	return u, ok
}
