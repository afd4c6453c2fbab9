// Package books — жизненный цикл книг: создание с обложкой, изменение
// и удаление владельцем, оценки и выборка лучших.
package books

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/imaging"
)

const (
	DefaultBestLimit = 3
	MaxBestLimit     = 50

	ImagesPath = "/images/"

	defaultCleanupTimeout = 30 * time.Second
)

type Optimizer interface {
	Optimize(ctx context.Context, src io.Reader) ([]byte, error)
}

// Upload — загруженный файл обложки
type Upload struct {
	Reader   io.Reader
	Filename string
	Size     int64
}

type Service struct {
	repo      domain.BooksRepo
	storage   domain.BlobStorage
	optimizer Optimizer
	logger    *log.Logger

	cache    domain.Cache
	cacheTTL int

	now            func() time.Time
	cleanupTimeout time.Duration
	wg             sync.WaitGroup
}

type Option func(*Service)

// WithCache включает кеш чтения; nil оставляет его выключенным.
func WithCache(c domain.Cache, ttlSeconds int) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttlSeconds
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(repo domain.BooksRepo, storage domain.BlobStorage, optimizer Optimizer, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		storage:        storage,
		optimizer:      optimizer,
		logger:         logger,
		now:            time.Now,
		cleanupTimeout: defaultCleanupTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ResolveOwner выбирает владельца новой книги: пользователь из токена,
// если он есть, иначе userId из метаданных.
func ResolveOwner(authUser *domain.UserID, metaUserID string) (domain.UserID, error) {
	metaUserID = strings.TrimSpace(metaUserID)
	if authUser != nil {
		if metaUserID != "" && metaUserID != authUser.String() {
			return domain.UserID{}, fmt.Errorf("%w: userId does not match token", domain.ErrForbidden)
		}
		return *authUser, nil
	}
	id, err := uuid.Parse(metaUserID)
	if err != nil || id == uuid.Nil {
		return domain.UserID{}, fmt.Errorf("%w: valid userId is required", domain.ErrBadParams)
	}
	return id, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Service) GetByID(ctx context.Context, id domain.BookID) (domain.Book, error) {
	key := domain.CacheKeyBook(id)
	var b domain.Book
	if s.cacheGet(ctx, key, &b) {
		return b, nil
	}
	b, err := s.repo.BookByID(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}
	s.cacheSet(ctx, key, b)
	return b, nil
}

func (s *Service) BestRated(ctx context.Context, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = DefaultBestLimit
	}
	if limit > MaxBestLimit {
		limit = MaxBestLimit
	}

	key := domain.CacheKeyBestRated(limit)
	var out []domain.Book
	if s.cacheGet(ctx, key, &out) {
		return out, nil
	}
	out, err := s.repo.BestRated(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, out)
	return out, nil
}

func (s *Service) Create(ctx context.Context, owner domain.UserID, in domain.BookInput, up *Upload, origin string) (domain.Book, error) {
	if up == nil || up.Reader == nil {
		return domain.Book{}, fmt.Errorf("%w: image is required", domain.ErrBadParams)
	}
	if err := in.Validate(); err != nil {
		return domain.Book{}, err
	}

	imageURL, err := s.storeImage(ctx, up, origin)
	if err != nil {
		return domain.Book{}, err
	}

	ratings := in.Ratings
	if ratings == nil {
		ratings = []domain.Rating{}
	}
	b, err := s.repo.CreateBook(ctx, domain.Book{
		UserID:        owner,
		Title:         strings.TrimSpace(in.Title),
		Author:        strings.TrimSpace(in.Author),
		Year:          in.Year,
		Genre:         strings.TrimSpace(in.Genre),
		ImageURL:      imageURL,
		Ratings:       ratings,
		AverageRating: domain.AverageRating(ratings),
	})
	if err != nil {
		// запись не создана, загруженная обложка не нужна
		s.scheduleImageCleanup(ctx, imageURL)
		return domain.Book{}, err
	}

	s.invalidate(ctx, nil)
	s.logger.Printf("book created id=%s owner=%s", b.ID, owner)
	return b, nil
}

func (s *Service) Modify(ctx context.Context, id domain.BookID, requester domain.UserID, patch domain.BookPatch, up *Upload, origin string) (domain.Book, error) {
	if err := patch.Validate(); err != nil {
		return domain.Book{}, err
	}

	cur, err := s.repo.BookByID(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}
	if !cur.IsOwnedBy(requester) {
		return domain.Book{}, fmt.Errorf("%w: not the owner of book %s", domain.ErrForbidden, id)
	}
	hasImage := up != nil && up.Reader != nil
	if patch.Empty() && !hasImage {
		return cur, nil
	}

	upd := domain.BookUpdate{BookPatch: trimPatch(patch)}
	if hasImage {
		imageURL, err := s.storeImage(ctx, up, origin)
		if err != nil {
			return domain.Book{}, err
		}
		upd.ImageURL = &imageURL
	}

	b, err := s.repo.UpdateBook(ctx, id, upd)
	if err != nil {
		if upd.ImageURL != nil {
			s.scheduleImageCleanup(ctx, *upd.ImageURL)
		}
		return domain.Book{}, err
	}
	if upd.ImageURL != nil && cur.ImageURL != *upd.ImageURL {
		s.scheduleImageCleanup(ctx, cur.ImageURL)
	}

	s.invalidate(ctx, &id)
	s.logger.Printf("book modified id=%s", id)
	return b, nil
}

// Delete сначала удаляет запись, затем (best-effort) файл обложки.
func (s *Service) Delete(ctx context.Context, id domain.BookID, requester domain.UserID) error {
	cur, err := s.repo.BookByID(ctx, id)
	if err != nil {
		return err
	}
	if !cur.IsOwnedBy(requester) {
		return fmt.Errorf("%w: not the owner of book %s", domain.ErrForbidden, id)
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.scheduleImageCleanup(ctx, cur.ImageURL)

	s.invalidate(ctx, &id)
	s.logger.Printf("book deleted id=%s", id)
	return nil
}

func (s *Service) Rate(ctx context.Context, id domain.BookID, rater domain.UserID, grade int) (domain.Book, error) {
	if !domain.ValidGrade(grade) {
		return domain.Book{}, fmt.Errorf("%w: grade must be between %d and %d", domain.ErrBadParams, domain.MinGrade, domain.MaxGrade)
	}
	cur, err := s.repo.BookByID(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}
	if cur.HasRated(rater) {
		return domain.Book{}, fmt.Errorf("%w: user %s", domain.ErrDuplicateRating, rater)
	}
	b, err := s.repo.AddRating(ctx, id, domain.Rating{UserID: rater, Grade: grade})
	if err != nil {
		return domain.Book{}, err
	}

	s.invalidate(ctx, &id)
	s.logger.Printf("book rated id=%s avg=%d", id, b.AverageRating)
	return b, nil
}

// Wait ждёт завершения фоновых удалений обложек.
func (s *Service) Wait() {
	s.wg.Wait()
}

// ---------- обложки ----------

func (s *Service) storeImage(ctx context.Context, up *Upload, origin string) (string, error) {
	data, err := s.optimizer.Optimize(ctx, up.Reader)
	if err != nil {
		return "", err
	}
	name := imaging.StoredName(up.Filename, s.now())
	if err := s.storage.Put(ctx, name, bytes.NewReader(data), int64(len(data)), imaging.ContentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return strings.TrimRight(origin, "/") + ImagesPath + name, nil
}

// ImageKey достаёт имя объекта из imageUrl ("" — если URL не наш).
func ImageKey(imageURL string) string {
	i := strings.LastIndex(imageURL, ImagesPath)
	if i < 0 {
		return ""
	}
	key := imageURL[i+len(ImagesPath):]
	if key == "" || strings.ContainsAny(key, "/?#") {
		return ""
	}
	return key
}

// scheduleImageCleanup удаляет файл в фоне; ошибки только логируются.
func (s *Service) scheduleImageCleanup(ctx context.Context, imageURL string) {
	key := ImageKey(imageURL)
	if key == "" {
		return
	}
	bg := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(bg, s.cleanupTimeout)
		defer cancel()
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Printf("image cleanup %q failed: %v", key, err)
			return
		}
		s.logger.Printf("image cleanup %q ok", key)
	}()
}

func trimPatch(p domain.BookPatch) domain.BookPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return domain.BookPatch{Title: trim(p.Title), Author: trim(p.Author), Year: p.Year, Genre: trim(p.Genre)}
}

// ---------- кеш ----------

func (s *Service) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Printf("cache get %q: %v", key, err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Printf("cache decode %q: %v", key, err)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Printf("cache encode %q: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.Printf("cache set %q: %v", key, err)
	}
}

// invalidate сбрасывает выборки лучших и, если задано, запись книги.
func (s *Service) invalidate(ctx context.Context, id *domain.BookID) {
	if s.cache == nil {
		return
	}
	if id != nil {
		if err := s.cache.Del(ctx, domain.CacheKeyBook(*id)); err != nil {
			s.logger.Printf("cache del book %s: %v", id, err)
		}
	}
	if err := s.cache.DelPrefix(ctx, domain.CacheKeyBestPrefix); err != nil {
		s.logger.Printf("cache del best: %v", err)
	}
}
