package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в v1.MapDomainError)
var (
	ErrBadParams        = errors.New("bad_params")         // 400, ValidationError
	ErrUnauth           = errors.New("unauthorized")       // 401, AuthError
	ErrForbidden        = errors.New("forbidden")          // 403
	ErrNotFound         = errors.New("not_found")          // 404
	ErrDuplicateRating  = errors.New("already_rated")      // 400
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Коды ошибок в конверте ответа
const (
	ErrCodeBadParams        = 1000
	ErrCodeUnauth           = 1001
	ErrCodeForbidden        = 1003
	ErrCodeNotFound         = 1004
	ErrCodeMethodNotAllowed = 1005
	ErrCodeDuplicateRating  = 1009
	ErrCodeUnexpected       = 1500
)
