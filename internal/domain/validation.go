package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

func ValidEmail(s string) bool {
	if strings.TrimSpace(s) != s || s == "" {
		return false
	}
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

// MaxPasswordBytes — предел bcrypt, применяется ко всем алгоритмам.
const MaxPasswordBytes = 72

func ValidPassword(s string) bool {
	return strings.TrimSpace(s) != "" && len(s) <= MaxPasswordBytes
}

func ValidGrade(g int) bool {
	return g >= MinGrade && g <= MaxGrade
}

// Validate проверяет метаданные новой книги и встроенные оценки.
func (in BookInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrBadParams)
	}
	if strings.TrimSpace(in.Author) == "" {
		return fmt.Errorf("%w: author is required", ErrBadParams)
	}
	if strings.TrimSpace(in.Genre) == "" {
		return fmt.Errorf("%w: genre is required", ErrBadParams)
	}
	seen := make(map[UserID]struct{}, len(in.Ratings))
	for _, r := range in.Ratings {
		if !ValidGrade(r.Grade) {
			return fmt.Errorf("%w: grade %d out of range [%d, %d]", ErrBadParams, r.Grade, MinGrade, MaxGrade)
		}
		if _, dup := seen[r.UserID]; dup {
			return fmt.Errorf("%w: user %s rated twice", ErrBadParams, r.UserID)
		}
		seen[r.UserID] = struct{}{}
	}
	return nil
}

// Validate проверяет, что заданные поля патча не пустые.
func (p BookPatch) Validate() error {
	for name, v := range map[string]*string{"title": p.Title, "author": p.Author, "genre": p.Genre} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrBadParams, name)
		}
	}
	return nil
}
