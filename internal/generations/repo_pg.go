package generations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/settham78ths/V2/internal/registry"
)

// PGRepository persists generations in Postgres.
type PGRepository struct {
	db *sql.DB
}

func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

func (r *PGRepository) Create(ctx context.Context, g Generation) error {
	fields, err := json.Marshal(g.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	const query = `
		INSERT INTO generations (id, session_id, user_id, upload_id, operation, language, tier, watermarked, fallback, input_chars, raw_text, fields, output_text, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	if _, err := r.db.ExecContext(ctx, query,
		g.ID, g.SessionID, g.UserID, g.UploadID, string(g.Operation), g.Language, g.Tier,
		g.Watermarked, g.Fallback, g.InputChars, g.RawText, fields, g.OutputText, g.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Generation, error) {
	const query = `
		SELECT id, session_id, COALESCE(user_id, ''), COALESCE(upload_id, ''), operation, language, tier, watermarked, fallback, input_chars, raw_text, fields, output_text, created_at
		FROM generations
		WHERE id = $1`

	g, err := scanGeneration(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Generation{}, ErrNotFound
	}
	if err != nil {
		return Generation{}, fmt.Errorf("get generation: %w", err)
	}
	return g, nil
}

func (r *PGRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]Generation, error) {
	const query = `
		SELECT id, session_id, COALESCE(user_id, ''), COALESCE(upload_id, ''), operation, language, tier, watermarked, fallback, input_chars, raw_text, fields, output_text, created_at
		FROM generations
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (Generation, error) {
	var g Generation
	var op string
	var fields []byte
	if err := row.Scan(
		&g.ID, &g.SessionID, &g.UserID, &g.UploadID, &op, &g.Language, &g.Tier,
		&g.Watermarked, &g.Fallback, &g.InputChars, &g.RawText, &fields, &g.OutputText, &g.CreatedAt,
	); err != nil {
		return Generation{}, err
	}
	g.Operation = registry.Operation(op)
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &g.Fields); err != nil {
			return Generation{}, fmt.Errorf("decode fields: %w", err)
		}
	}
	return g, nil
}
