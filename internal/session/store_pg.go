package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGStore persists session state in Postgres.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Get(ctx context.Context, sessionID string) (State, error) {
	const query = `
		SELECT session_id, paid_access, cv_builder_access, original_text, optimized_text, updated_at
		FROM session_state
		WHERE session_id = $1`

	var state State
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&state.SessionID,
		&state.PaidAccess,
		&state.CVBuilderAccess,
		&state.OriginalText,
		&state.OptimizedText,
		&state.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return State{SessionID: sessionID}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("get session state: %w", err)
	}
	return state, nil
}

func (s *PGStore) Save(ctx context.Context, state State) error {
	const query = `
		INSERT INTO session_state (session_id, paid_access, cv_builder_access, original_text, optimized_text, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (session_id) DO UPDATE SET
			paid_access = EXCLUDED.paid_access,
			cv_builder_access = EXCLUDED.cv_builder_access,
			original_text = EXCLUDED.original_text,
			optimized_text = EXCLUDED.optimized_text,
			updated_at = now()`

	if _, err := s.db.ExecContext(ctx, query,
		state.SessionID,
		state.PaidAccess,
		state.CVBuilderAccess,
		state.OriginalText,
		state.OptimizedText,
	); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}
