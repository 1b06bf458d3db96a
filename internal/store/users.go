package store

import (
	"context"

	"medbill/m/domain"
	"medbill/m/internal/timeutil"
)

const userColumns = `id, username, password_hash, full_name, role, is_active, created_at`

func (q *Queries) CreateUser(ctx context.Context, u *domain.User) error {
	u.CreatedAt = timeutil.Stamp()
	id, err := q.insert(ctx, "create user", `INSERT INTO users (username, password_hash, full_name, role, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		u.Username, u.PasswordHash, u.FullName, u.Role, u.IsActive, u.CreatedAt)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (q *Queries) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := q.get(ctx, &u, "user", id, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return u, err
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := q.get(ctx, &u, "user", username, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return u, err
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.scalar(ctx, &count, "count users", `SELECT COUNT(*) FROM users`)
	return count, err
}

func (q *Queries) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	n, err := q.exec(ctx, "update password", `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("user", id)
	}
	return nil
}
