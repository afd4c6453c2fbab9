package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID
type BookID = uuid.UUID

// Пользователь
type User struct {
	ID        UserID    `json:"id"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"` // никогда не отдаём наружу
	CreatedAt time.Time `json:"createdAt"`
}

// Оценка книги одним пользователем
type Rating struct {
	UserID UserID `json:"userId"`
	Grade  int    `json:"grade"`
}

// Книга каталога
type Book struct {
	ID            BookID    `json:"id"`
	UserID        UserID    `json:"userId"` // владелец, задаётся один раз
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Year          int       `json:"year"`
	Genre         string    `json:"genre"`
	ImageURL      string    `json:"imageUrl"`
	Ratings       []Rating  `json:"ratings"`
	AverageRating int       `json:"averageRating"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsOwnedBy сверяет владельца по равенству идентификаторов.
func (b Book) IsOwnedBy(id UserID) bool { return b.UserID == id }

// Метаданные при создании книги (JSON-поле "book" в multipart)
type BookInput struct {
	UserID  string   `json:"userId"`
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Year    int      `json:"year"`
	Genre   string   `json:"genre"`
	Ratings []Rating `json:"ratings"`
}

// BookPatch — явный список изменяемых полей; nil означает «не трогать».
// Владелец, id и оценки через патч не меняются.
type BookPatch struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Year   *int    `json:"year"`
	Genre  *string `json:"genre"`
}

// BookUpdate — то, что сервис передаёт в хранилище при модификации
type BookUpdate struct {
	BookPatch
	ImageURL *string
}

// Empty сообщает, что патч ничего не меняет.
func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Year == nil && p.Genre == nil
}
