package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/my-books/internal/domain"
)

var bookColumns = []string{
	"id", "user_id", "title", "author", "year", "genre",
	"image_url", "average_rating", "created_at", "updated_at",
}

const bookReturning = "RETURNING id, user_id, title, author, year, genre, image_url, average_rating, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (domain.Book, error) {
	var b domain.Book
	err := row.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Author, &b.Year, &b.Genre,
		&b.ImageURL, &b.AverageRating, &b.CreatedAt, &b.UpdatedAt,
	)
	b.Ratings = []domain.Rating{}
	return b, err
}

// querier — общий интерфейс пула и транзакции
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PGRepo) listBooks(ctx context.Context, op string, q sq.SelectBuilder) ([]domain.Book, error) {
	sqlStr, args, _ := q.ToSql()
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("%s query error after %s: %v", op, time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	res := []domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			r.logger.Printf("%s scan error: %v", op, err)
			return nil, err
		}
		res = append(res, b)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("%s rows error: %v", op, err)
		return nil, err
	}
	if err := r.attachRatings(ctx, r.pool, res); err != nil {
		return nil, err
	}
	r.logger.Printf("%s ok in %s count=%d", op, time.Since(start), len(res))
	return res, nil
}

// attachRatings подгружает оценки одним запросом, в порядке добавления.
func (r *PGRepo) attachRatings(ctx context.Context, db querier, books []domain.Book) error {
	if len(books) == 0 {
		return nil
	}
	idx := make(map[domain.BookID]int, len(books))
	ids := make([]domain.BookID, 0, len(books))
	for i, b := range books {
		idx[b.ID] = i
		ids = append(ids, b.ID)
		books[i].Ratings = []domain.Rating{}
	}

	q := r.qb().Select("book_id", "user_id", "grade").
		From("book_ratings").
		Where(sq.Eq{"book_id": ids}).
		OrderBy("book_id", "seq ASC")
	sqlStr, args, _ := q.ToSql()
	r.logSQL("attachRatings", sqlStr, args)

	rows, err := db.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("attachRatings query error: %v", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID domain.BookID
			rt     domain.Rating
		)
		if err := rows.Scan(&bookID, &rt.UserID, &rt.Grade); err != nil {
			r.logger.Printf("attachRatings scan error: %v", err)
			return err
		}
		i := idx[bookID]
		books[i].Ratings = append(books[i].Ratings, rt)
	}
	return rows.Err()
}

func (r *PGRepo) ListBooks(ctx context.Context) ([]domain.Book, error) {
	q := r.qb().Select(bookColumns...).From("books").
		OrderBy("created_at ASC", "id ASC")
	return r.listBooks(ctx, "ListBooks", q)
}

func (r *PGRepo) BestRated(ctx context.Context, limit int) ([]domain.Book, error) {
	if limit < 0 {
		limit = 0
	}
	q := r.qb().Select(bookColumns...).From("books").
		OrderBy("average_rating DESC", "created_at ASC", "id ASC").
		Limit(uint64(limit))
	return r.listBooks(ctx, "BestRated", q)
}

func (r *PGRepo) bookByID(ctx context.Context, db querier, id domain.BookID, forUpdate bool) (domain.Book, error) {
	q := r.qb().Select(bookColumns...).From("books").Where(sq.Eq{"id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	sqlStr, args, _ := q.ToSql()
	r.logSQL("BookByID", sqlStr, args)

	start := time.Now()
	b, err := scanBook(db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("BookByID scan error after %s: %v", time.Since(start), err)
		return domain.Book{}, mapErr(err, "book "+id.String())
	}
	books := []domain.Book{b}
	if err := r.attachRatings(ctx, db, books); err != nil {
		return domain.Book{}, err
	}
	r.logger.Printf("BookByID ok in %s id=%s", time.Since(start), id)
	return books[0], nil
}

func (r *PGRepo) BookByID(ctx context.Context, id domain.BookID) (domain.Book, error) {
	return r.bookByID(ctx, r.pool, id, false)
}

func (r *PGRepo) CreateBook(ctx context.Context, b domain.Book) (out domain.Book, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Book{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	q := r.qb().Insert("books").
		Columns("user_id", "title", "author", "year", "genre", "image_url", "average_rating").
		Values(b.UserID, b.Title, b.Author, b.Year, b.Genre, b.ImageURL, domain.AverageRating(b.Ratings)).
		Suffix(bookReturning)
	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateBook", sqlStr, args)

	start := time.Now()
	out, err = scanBook(tx.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreateBook scan error after %s: %v", time.Since(start), err)
		return domain.Book{}, err
	}

	if len(b.Ratings) > 0 {
		ins := r.qb().Insert("book_ratings").Columns("book_id", "user_id", "grade")
		for _, rt := range b.Ratings {
			ins = ins.Values(out.ID, rt.UserID, rt.Grade)
		}
		sqlStr, args, _ = ins.ToSql()
		r.logSQL("CreateBook.ratings", sqlStr, args)
		if _, err = tx.Exec(ctx, sqlStr, args...); err != nil {
			r.logger.Printf("CreateBook.ratings exec error: %v", err)
			if isUniqueViolation(err) {
				return domain.Book{}, fmt.Errorf("%w: user rated twice", domain.ErrBadParams)
			}
			return domain.Book{}, err
		}
		out.Ratings = append([]domain.Rating{}, b.Ratings...)
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Book{}, fmt.Errorf("commit: %w", err)
	}
	r.logger.Printf("CreateBook ok in %s id=%s", time.Since(start), out.ID)
	return out, nil
}

func (r *PGRepo) UpdateBook(ctx context.Context, id domain.BookID, upd domain.BookUpdate) (domain.Book, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Author != nil {
		set["author"] = *upd.Author
	}
	if upd.Year != nil {
		set["year"] = *upd.Year
	}
	if upd.Genre != nil {
		set["genre"] = *upd.Genre
	}
	if upd.ImageURL != nil {
		set["image_url"] = *upd.ImageURL
	}

	q := r.qb().Update("books").SetMap(set).Where(sq.Eq{"id": id}).Suffix(bookReturning)
	sqlStr, args, _ := q.ToSql()
	r.logSQL("UpdateBook", sqlStr, args)

	start := time.Now()
	b, err := scanBook(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("UpdateBook scan error after %s: %v", time.Since(start), err)
		return domain.Book{}, mapErr(err, "book "+id.String())
	}
	books := []domain.Book{b}
	if err := r.attachRatings(ctx, r.pool, books); err != nil {
		return domain.Book{}, err
	}
	r.logger.Printf("UpdateBook ok in %s id=%s", time.Since(start), id)
	return books[0], nil
}

func (r *PGRepo) DeleteBook(ctx context.Context, id domain.BookID) error {
	q := r.qb().Delete("books").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteBook", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteBook exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Printf("DeleteBook no rows affected in %s", time.Since(start))
		return fmt.Errorf("%w: book %s", domain.ErrNotFound, id)
	}
	r.logger.Printf("DeleteBook ok in %s id=%s", time.Since(start), id)
	return nil
}

// AddRating: строка книги блокируется FOR UPDATE, уникальность пары
// (book_id, user_id) держит первичный ключ book_ratings.
func (r *PGRepo) AddRating(ctx context.Context, id domain.BookID, rt domain.Rating) (out domain.Book, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Book{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	b, err := r.bookByID(ctx, tx, id, true)
	if err != nil {
		return domain.Book{}, err
	}

	ins := r.qb().Insert("book_ratings").
		Columns("book_id", "user_id", "grade").
		Values(id, rt.UserID, rt.Grade).
		Suffix("ON CONFLICT (book_id, user_id) DO NOTHING")
	sqlStr, args, _ := ins.ToSql()
	r.logSQL("AddRating.insert", sqlStr, args)

	start := time.Now()
	tag, err := tx.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("AddRating insert error after %s: %v", time.Since(start), err)
		return domain.Book{}, err
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("%w: user %s", domain.ErrDuplicateRating, rt.UserID)
		return domain.Book{}, err
	}

	b = b.WithRating(rt)
	upd := r.qb().Update("books").
		Set("average_rating", b.AverageRating).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING updated_at")
	sqlStr, args, _ = upd.ToSql()
	r.logSQL("AddRating.update", sqlStr, args)

	if err = tx.QueryRow(ctx, sqlStr, args...).Scan(&b.UpdatedAt); err != nil {
		r.logger.Printf("AddRating update error: %v", err)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Book{}, mapErr(err, "book "+id.String())
		}
		return domain.Book{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Book{}, fmt.Errorf("commit: %w", err)
	}
	r.logger.Printf("AddRating ok in %s id=%s avg=%d", time.Since(start), id, b.AverageRating)
	return b, nil
}
