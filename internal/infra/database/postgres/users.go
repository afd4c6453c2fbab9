package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/EgorLis/my-books/internal/domain"
)

var userColumns = []string{"id", "email", "pass_hash", "created_at"}

func (r *PGRepo) CreateUser(ctx context.Context, email string, passHash []byte) (domain.User, error) {
	q := r.qb().Insert("users").
		Columns("email", "pass_hash").
		Values(email, passHash).
		Suffix("RETURNING id, email, pass_hash, created_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateUser", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.CreatedAt); err != nil {
		r.logger.Printf("CreateUser scan error after %s: %v", time.Since(start), err)
		if isUniqueViolation(err) {
			return domain.User{}, fmt.Errorf("%w: email already registered", domain.ErrBadParams)
		}
		return domain.User{}, err
	}
	r.logger.Printf("CreateUser ok in %s id=%s", time.Since(start), u.ID)
	return u, nil
}

func (r *PGRepo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.userBy(ctx, "UserByEmail", sq.Expr("lower(email) = lower(?)", email))
}

func (r *PGRepo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return r.userBy(ctx, "UserByID", sq.Eq{"id": id})
}

func (r *PGRepo) userBy(ctx context.Context, op string, pred sq.Sqlizer) (domain.User, error) {
	q := r.qb().Select(userColumns...).From("users").Where(pred)

	sqlStr, args, _ := q.ToSql()
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.CreatedAt); err != nil {
		r.logger.Printf("%s scan error after %s: %v", op, time.Since(start), err)
		return domain.User{}, mapErr(err, "user")
	}
	r.logger.Printf("%s ok in %s id=%s", op, time.Since(start), u.ID)
	return u, nil
}
