package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepository persists uploads in Postgres.
type PGRepository struct {
	db *sql.DB
}

func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

func (r *PGRepository) Create(ctx context.Context, u Upload) error {
	const query = `
		INSERT INTO uploads (id, session_id, user_id, filename, content_type, size_bytes, text_content)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)`

	if _, err := r.db.ExecContext(ctx, query,
		u.ID, u.SessionID, u.UserID, u.Filename, u.ContentType, u.SizeBytes, u.Text,
	); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Upload, error) {
	const query = `
		SELECT id, session_id, COALESCE(user_id, ''), filename, content_type, size_bytes, text_content, created_at::text
		FROM uploads
		WHERE id = $1`

	var u Upload
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.SessionID, &u.UserID, &u.Filename, &u.ContentType, &u.SizeBytes, &u.Text, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Upload{}, ErrNotFound
	}
	if err != nil {
		return Upload{}, fmt.Errorf("get upload: %w", err)
	}
	return u, nil
}
