// Package uploads stores extracted CV text and validates it before it
// enters the generation pipeline.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrNotFound is returned when no upload matches the lookup.
var ErrNotFound = errors.New("upload not found")

// Upload is one stored CV text, extracted from a file or pasted in.
type Upload struct {
	ID          string
	SessionID   string
	UserID      string
	Filename    string
	ContentType string
	SizeBytes   int64
	Text        string
	CreatedAt   string
}

// Repository persists uploads.
type Repository interface {
	Create(ctx context.Context, u Upload) error
	GetByID(ctx context.Context, id string) (Upload, error)
}

const (
	// MinTextChars rejects fragments too short to be a CV.
	MinTextChars = 100
	// MaxTextChars guards against pasting entire books.
	MaxTextChars = 50000
)

// ValidationError describes why a CV text was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid CV text: %s", e.Reason)
}

// ValidateCVText checks that the text plausibly is a CV before any
// model call spends budget on it.
func ValidateCVText(text string) error {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinTextChars {
		return &ValidationError{Reason: fmt.Sprintf("text is too short, need at least %d characters", MinTextChars)}
	}
	if len(trimmed) > MaxTextChars {
		return &ValidationError{Reason: fmt.Sprintf("text is too long, maximum is %d characters", MaxTextChars)}
	}

	letters := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < MinTextChars/2 {
		return &ValidationError{Reason: "text does not look like readable CV content"}
	}
	return nil
}
