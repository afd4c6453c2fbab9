package password

import (
	"fmt"
	"strings"

	"github.com/EgorLis/my-books/internal/domain"
)

const (
	AlgoBcrypt   = "bcrypt"
	AlgoArgon2id = "argon2id"
)

// Hasher хеширует новые пароли выбранным алгоритмом, а проверяет любым
// из поддерживаемых: формат определяется по префиксу сохранённого хэша.
type Hasher struct {
	primary domain.PasswordHasher
	bcrypt  *Bcrypt
	argon   *Argon2
}

var _ domain.PasswordHasher = (*Hasher)(nil)

func New(algo string, bcryptCost int) (*Hasher, error) {
	h := &Hasher{bcrypt: NewBcrypt(bcryptCost), argon: NewArgon2Default()}
	switch strings.ToLower(algo) {
	case "", AlgoBcrypt:
		h.primary = h.bcrypt
	case AlgoArgon2id:
		h.primary = h.argon
	default:
		return nil, fmt.Errorf("unknown password hasher %q", algo)
	}
	return h, nil
}

func (h *Hasher) Hash(plain string) (string, error) {
	return h.primary.Hash(plain)
}

func (h *Hasher) Verify(plain, encodedHash string) (bool, error) {
	if strings.HasPrefix(encodedHash, argon2Prefix) {
		return h.argon.Verify(plain, encodedHash)
	}
	return h.bcrypt.Verify(plain, encodedHash)
}
