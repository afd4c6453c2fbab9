// Package memory — хранилище пользователей и книг в памяти процесса.
// Используется при DB_DRIVER=memory и в тестах сервисов и HTTP-слоя.
package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/my-books/internal/domain"
)

type Repo struct {
	logger *log.Logger

	mu      sync.RWMutex
	users   map[domain.UserID]domain.User
	byEmail map[string]domain.UserID
	books   map[domain.BookID]domain.Book
	now     func() time.Time
}

var (
	_ domain.UsersRepo = (*Repo)(nil)
	_ domain.BooksRepo = (*Repo)(nil)
)

func New(logger *log.Logger) *Repo {
	return &Repo{
		logger:  logger,
		users:   make(map[domain.UserID]domain.User),
		byEmail: make(map[string]domain.UserID),
		books:   make(map[domain.BookID]domain.Book),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repo) Close() {
	r.logger.Println("memory store closed")
}

func (r *Repo) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ---------- USERS ----------

func (r *Repo) CreateUser(ctx context.Context, email string, passHash []byte) (domain.User, error) {
	key := strings.ToLower(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[key]; ok {
		return domain.User{}, fmt.Errorf("%w: email already registered", domain.ErrBadParams)
	}
	u := domain.User{
		ID:        uuid.New(),
		Email:     email,
		PassHash:  append([]byte(nil), passHash...),
		CreatedAt: r.now(),
	}
	r.users[u.ID] = u
	r.byEmail[key] = u.ID
	r.logger.Printf("CreateUser ok id=%s", u.ID)
	return u, nil
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return r.users[id], nil
}

func (r *Repo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return u, nil
}

// ---------- BOOKS ----------

// копия, чтобы вызывающий не мог изменить оценки внутри хранилища
func clone(b domain.Book) domain.Book {
	out := make([]domain.Rating, len(b.Ratings))
	copy(out, b.Ratings)
	b.Ratings = out
	return b
}

func (r *Repo) sorted(less func(a, b domain.Book) bool) []domain.Book {
	out := make([]domain.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byCreated(a, b domain.Book) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

func (r *Repo) ListBooks(ctx context.Context) ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(byCreated), nil
}

func (r *Repo) BestRated(ctx context.Context, limit int) ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.sorted(func(a, b domain.Book) bool {
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		return byCreated(a, b)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repo) BookByID(ctx context.Context, id domain.BookID) (domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return domain.Book{}, fmt.Errorf("%w: book %s", domain.ErrNotFound, id)
	}
	return clone(b), nil
}

func (r *Repo) CreateBook(ctx context.Context, b domain.Book) (domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	// created_at строго возрастает, чтобы порядок был детерминированным
	now := r.now()
	for _, other := range r.books {
		if !now.After(other.CreatedAt) {
			now = other.CreatedAt.Add(time.Microsecond)
		}
	}
	b.CreatedAt, b.UpdatedAt = now, now
	if b.Ratings == nil {
		b.Ratings = []domain.Rating{}
	}
	b.AverageRating = domain.AverageRating(b.Ratings)
	r.books[b.ID] = clone(b)
	r.logger.Printf("CreateBook ok id=%s", b.ID)
	return clone(b), nil
}

func (r *Repo) UpdateBook(ctx context.Context, id domain.BookID, upd domain.BookUpdate) (domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return domain.Book{}, fmt.Errorf("%w: book %s", domain.ErrNotFound, id)
	}
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Author != nil {
		b.Author = *upd.Author
	}
	if upd.Year != nil {
		b.Year = *upd.Year
	}
	if upd.Genre != nil {
		b.Genre = *upd.Genre
	}
	if upd.ImageURL != nil {
		b.ImageURL = *upd.ImageURL
	}
	b.UpdatedAt = r.now()
	r.books[id] = b
	r.logger.Printf("UpdateBook ok id=%s", id)
	return clone(b), nil
}

func (r *Repo) DeleteBook(ctx context.Context, id domain.BookID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return fmt.Errorf("%w: book %s", domain.ErrNotFound, id)
	}
	delete(r.books, id)
	r.logger.Printf("DeleteBook ok id=%s", id)
	return nil
}

func (r *Repo) AddRating(ctx context.Context, id domain.BookID, rt domain.Rating) (domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return domain.Book{}, fmt.Errorf("%w: book %s", domain.ErrNotFound, id)
	}
	if b.HasRated(rt.UserID) {
		return domain.Book{}, fmt.Errorf("%w: user %s", domain.ErrDuplicateRating, rt.UserID)
	}
	b = b.WithRating(rt)
	b.UpdatedAt = r.now()
	r.books[id] = b
	r.logger.Printf("AddRating ok id=%s avg=%d", id, b.AverageRating)
	return clone(b), nil
}
