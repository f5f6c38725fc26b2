package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, hashed_password, full_name, role, push_token, is_active, created_at, updated_at`

func scanUser(row scannable) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.Role, &u.PushToken, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

type CreateUserParams struct {
	Email          string
	HashedPassword string
	FullName       string
	Role           string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (email, hashed_password, full_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		arg.Email, arg.HashedPassword, arg.FullName, arg.Role,
	)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active`, email)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

type UpdateUserProfileParams struct {
	ID       uuid.UUID
	FullName string
	Email    string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users SET full_name = $2, email = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.FullName, arg.Email,
	)
	return scanUser(row)
}

func (q *Queries) UpdateUserPassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET hashed_password = $2, updated_at = now() WHERE id = $1`, id, hashedPassword)
	return err
}

func (q *Queries) UpdateUserPushToken(ctx context.Context, id uuid.UUID, token pgtype.Text) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET push_token = $2, updated_at = now() WHERE id = $1`, id, token)
	return err
}
