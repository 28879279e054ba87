package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PGRepository persists users in Postgres.
type PGRepository struct {
	db *sql.DB
}

func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (User, error) {
	const query = `
		SELECT id, username, email, premium_until, created_at, updated_at
		FROM users
		WHERE id = $1`

	var u User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PremiumUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *PGRepository) SetPremiumUntil(ctx context.Context, id string, until time.Time) error {
	const query = `
		UPDATE users
		SET premium_until = $2, updated_at = now()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, until)
	if err != nil {
		return fmt.Errorf("set premium until: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set premium until: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
