// Package generations orchestrates one AI generation per request:
// resolve entitlement, gate, build the prompt, dispatch, normalize,
// apply the tier transform, and persist the outcome.
package generations

import (
	"context"
	"errors"
	"time"

	"github.com/settham78ths/V2/internal/registry"
)

// ErrNotFound is returned when no generation matches the lookup.
var ErrNotFound = errors.New("generation not found")

// Request is one generation invocation.
type Request struct {
	Operation   registry.Operation
	SessionID   string
	UserID      string
	Username    string
	UploadID    string
	CVText      string
	JobText     string
	TargetTitle string
	CompanyName string
	Feedback    string
	Language    string
}

// Generation is the persisted record of one completed generation. It
// is immutable once written; corrections are new records. RawText is
// the untouched model output, Fields the normalized structured result,
// OutputText the primary text after the tier transform.
type Generation struct {
	ID          string
	SessionID   string
	UserID      string
	UploadID    string
	Operation   registry.Operation
	Language    string
	Tier        string
	Watermarked bool
	Fallback    bool
	InputChars  int
	RawText     string
	Fields      map[string]any
	OutputText  string
	CreatedAt   time.Time
}

// Result is what the caller receives.
type Result struct {
	ID          string
	Operation   registry.Operation
	Language    string
	Tier        string
	Fields      map[string]any
	Text        string
	Watermarked bool
	Fallback    bool
}

// Repository persists generation records. Writes are append-only.
type Repository interface {
	Create(ctx context.Context, g Generation) error
	GetByID(ctx context.Context, id string) (Generation, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Generation, error)
}

// needsCVText reports whether the operation's template consumes CV
// text. Such operations are rejected before any model call when no
// text is supplied.
func needsCVText(op registry.Operation) bool {
	return op != registry.OpJobPostingAnalysis
}

// primaryField names the JSON field that carries the main textual
// output of each operation, for watermarking and compare support.
func primaryField(op registry.Operation) string {
	switch op {
	case registry.OpOptimize, registry.OpApplyFeedback, registry.OpPositionOptimize, registry.OpAdvancedPosition:
		return "optimized_cv"
	case registry.OpCoverLetter:
		return "cover_letter"
	case registry.OpGenerateCVContent:
		return "content"
	default:
		return ""
	}
}
