// Package store holds every SQL statement the application issues. A Queries
// value runs against either the database or an open transaction, so services
// compose multi-statement workflows inside database.WithTx.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"medbill/m/domain"
)

type Queries struct {
	ext sqlx.ExtContext
}

// New wraps a *sqlx.DB or *sqlx.Tx.
func New(ext sqlx.ExtContext) *Queries {
	return &Queries{ext: ext}
}

func (q *Queries) get(ctx context.Context, dest any, entity string, id any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity, id)
	}
	if err != nil {
		return domain.Persistence("load "+entity, err)
	}
	return nil
}

func (q *Queries) list(ctx context.Context, dest any, op string, query string, args ...any) error {
	if err := sqlx.SelectContext(ctx, q.ext, dest, q.ext.Rebind(query), args...); err != nil {
		return domain.Persistence(op, err)
	}
	return nil
}

// insert runs an INSERT ... RETURNING id statement.
func (q *Queries) insert(ctx context.Context, op string, query string, args ...any) (int64, error) {
	var id int64
	if err := q.ext.QueryRowxContext(ctx, q.ext.Rebind(query), args...).Scan(&id); err != nil {
		return 0, domain.Persistence(op, err)
	}
	return id, nil
}

func (q *Queries) exec(ctx context.Context, op string, query string, args ...any) (int64, error) {
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		return 0, domain.Persistence(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.Persistence(op, err)
	}
	return n, nil
}

func (q *Queries) scalar(ctx context.Context, dest any, op string, query string, args ...any) error {
	if err := q.ext.QueryRowxContext(ctx, q.ext.Rebind(query), args...).Scan(dest); err != nil {
		return domain.Persistence(op, err)
	}
	return nil
}

func likePattern(query string) string {
	return "%" + query + "%"
}
