package password

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

const argon2Prefix = "$argon2id$"

type Argon2 struct {
	params *argon2id.Params
}

func NewArgon2Default() *Argon2 {
	// параметры по умолчанию (достаточно безопасны и не слишком тяжёлые)
	return &Argon2{params: argon2id.DefaultParams}
}

func NewArgon2(p *argon2id.Params) *Argon2 { return &Argon2{params: p} }

// Hash возвращает закодированную строку формата $argon2id$v=19$m=..., которую можно хранить в БД.
func (h *Argon2) Hash(plain string) (string, error) {
	if h == nil || h.params == nil {
		return "", errors.New("argon2id params not set")
	}
	return argon2id.CreateHash(plain, h.params)
}

// Verify сравнивает пароль с сохранённым хэшем.
func (h *Argon2) Verify(plain, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plain, encodedHash)
}
