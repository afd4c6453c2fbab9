package mw

import (
	"net/http"

	"github.com/EgorLis/my-books/internal/domain"
)

// metaWriter запоминает статус, размер ответа и пользователя из токена
type metaWriter struct {
	http.ResponseWriter
	status int
	size   int

	user    domain.UserID
	hasUser bool
}

func (m *metaWriter) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *metaWriter) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.size += n
	return n, err
}

// Unwrap нужен http.ResponseController
func (m *metaWriter) Unwrap() http.ResponseWriter {
	return m.ResponseWriter
}

// markUser сообщает Logging, от чьего имени выполнен запрос.
// Без Logging в цепочке ничего не делает.
func markUser(w http.ResponseWriter, uid domain.UserID) {
	if m, ok := w.(*metaWriter); ok {
		m.user, m.hasUser = uid, true
	}
}

func userFromRequest(m *metaWriter) (domain.UserID, bool) {
	return m.user, m.hasUser
}
