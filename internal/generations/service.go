package generations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/settham78ths/V2/internal/entitlement"
	"github.com/settham78ths/V2/internal/llm"
	"github.com/settham78ths/V2/internal/normalize"
	"github.com/settham78ths/V2/internal/prompt"
	"github.com/settham78ths/V2/internal/registry"
	"github.com/settham78ths/V2/internal/session"
	"github.com/settham78ths/V2/internal/shared/metrics"
	"github.com/settham78ths/V2/internal/shared/telemetry"
	"github.com/settham78ths/V2/internal/uploads"
	"github.com/settham78ths/V2/internal/users"
)

const modelTemperature = 0.7

// Service runs the generation pipeline. Each request is handled
// sequentially; the only blocking step is the single model call.
type Service struct {
	client      llm.Client
	repo        Repository
	sessions    session.Store
	uploadRepo  uploads.Repository
	userRepo    users.Repository
	operators   func(username string) bool
	defaultLang string
	now         func() time.Time
}

func NewService(client llm.Client, repo Repository, sessions session.Store, uploadRepo uploads.Repository, userRepo users.Repository, operators func(string) bool, defaultLang string) *Service {
	if defaultLang == "" {
		defaultLang = prompt.DefaultLanguage
	}
	return &Service{
		client:      client,
		repo:        repo,
		sessions:    sessions,
		uploadRepo:  uploadRepo,
		userRepo:    userRepo,
		operators:   operators,
		defaultLang: defaultLang,
		now:         time.Now,
	}
}

// Generate executes one operation end to end. The entitlement snapshot
// is taken once at the start; a purchase landing mid-request does not
// change the outcome.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	requirement, err := registry.Lookup(req.Operation)
	if err != nil {
		return Result{}, err
	}
	metrics.IncGenerationStarted()
	started := s.now()

	state, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return Result{}, fmt.Errorf("load session state: %w", err)
	}
	snap := s.resolveEntitlement(ctx, req, state)

	allowed := registry.Allowed(snap, requirement)
	if !allowed && !requirement.FreePreview {
		metrics.IncGenerationGateRejected()
		return Result{}, &GateRejectedError{
			Operation:    req.Operation,
			CallerTier:   snap.Tier,
			RequiredTier: requirement.MinTier,
			RequiredFlag: requirement.Flag,
		}
	}

	// An unentitled free preview runs at the free budget and gets
	// watermarked afterward.
	budgetTier := snap.Tier
	if !allowed {
		budgetTier = entitlement.TierFree
	}

	cvText, err := s.resolveCVText(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if needsCVText(req.Operation) && strings.TrimSpace(cvText) == "" {
		return Result{}, ErrMissingCVText
	}

	language := req.Language
	if language == "" {
		language = s.defaultLang
	}
	built, err := prompt.Build(req.Operation, language, budgetTier, prompt.Inputs{
		CVText:      cvText,
		JobText:     req.JobText,
		TargetTitle: req.TargetTitle,
		CompanyName: req.CompanyName,
		Feedback:    req.Feedback,
	})
	if err != nil {
		return Result{}, err
	}

	raw, err := s.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: built.System},
			{Role: "user", Content: built.User},
		},
		MaxTokens:   requirement.Budget.For(budgetTier),
		Temperature: modelTemperature,
	})
	if err != nil {
		metrics.IncGenerationFailed()
		telemetry.Error("generation.dispatch_failed", map[string]any{
			"operation":  string(req.Operation),
			"session_id": req.SessionID,
			"tier":       snap.Tier.String(),
			"error":      err.Error(),
		})
		return Result{}, err
	}

	normalized := normalize.Normalize(raw)
	field := primaryField(req.Operation)
	text := normalized.Text(field)

	watermarked := false
	if !allowed && requirement.FreePreview {
		text = applyWatermark(text)
		watermarked = true
		metrics.IncGenerationWatermarked()
	}

	result := Result{
		ID:          uuid.NewString(),
		Operation:   req.Operation,
		Language:    built.Language,
		Tier:        snap.Tier.String(),
		Fields:      normalized.Fields,
		Text:        text,
		Watermarked: watermarked,
		Fallback:    normalized.Fallback,
	}

	s.persist(ctx, req, result, cvText, raw)
	s.updateSession(ctx, req, state, cvText, text)

	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(float64(s.now().Sub(started).Milliseconds()))
	telemetry.Info("generation.completed", map[string]any{
		"generation_id": result.ID,
		"operation":     string(req.Operation),
		"session_id":    req.SessionID,
		"tier":          snap.Tier.String(),
		"watermarked":   watermarked,
		"fallback":      normalized.Fallback,
	})
	return result, nil
}

func (s *Service) resolveEntitlement(ctx context.Context, req Request, state session.State) entitlement.Snapshot {
	in := entitlement.Inputs{
		Username:       req.Username,
		SessionPaid:    state.PaidAccess,
		CVBuilderPaid:  state.CVBuilderAccess,
		OperatorFilter: s.operators,
	}
	if req.UserID != "" && s.userRepo != nil {
		u, err := s.userRepo.GetByID(ctx, req.UserID)
		switch {
		case err == nil:
			in.PremiumUntil = u.PremiumUntil
			if in.Username == "" {
				in.Username = u.Username
			}
		case !errors.Is(err, users.ErrNotFound):
			telemetry.Warn("generation.user_lookup_failed", map[string]any{
				"user_id": req.UserID,
				"error":   err.Error(),
			})
		}
	}
	return entitlement.Resolve(s.now(), in)
}

func (s *Service) resolveCVText(ctx context.Context, req Request) (string, error) {
	if req.CVText != "" {
		return req.CVText, nil
	}
	if req.UploadID == "" {
		return "", nil
	}
	upload, err := s.uploadRepo.GetByID(ctx, req.UploadID)
	if err != nil {
		return "", fmt.Errorf("load upload: %w", err)
	}
	if upload.SessionID != req.SessionID {
		return "", uploads.ErrNotFound
	}
	return upload.Text, nil
}

// persist is best-effort: a storage failure is logged and never fails
// the already-computed result.
func (s *Service) persist(ctx context.Context, req Request, result Result, cvText, rawText string) {
	record := Generation{
		ID:          result.ID,
		SessionID:   req.SessionID,
		UserID:      req.UserID,
		UploadID:    req.UploadID,
		Operation:   req.Operation,
		Language:    result.Language,
		Tier:        result.Tier,
		Watermarked: result.Watermarked,
		Fallback:    result.Fallback,
		InputChars:  len(cvText),
		RawText:     rawText,
		Fields:      result.Fields,
		OutputText:  result.Text,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		telemetry.Error("generation.persist_failed", map[string]any{
			"generation_id": result.ID,
			"operation":     string(req.Operation),
			"session_id":    req.SessionID,
			"error":         err.Error(),
		})
	}
}

// updateSession keeps the latest original/optimized pair on the
// session for the compare endpoint. Best-effort, like persist.
func (s *Service) updateSession(ctx context.Context, req Request, state session.State, cvText, outputText string) {
	switch req.Operation {
	case registry.OpOptimize, registry.OpApplyFeedback, registry.OpPositionOptimize, registry.OpAdvancedPosition:
	default:
		return
	}
	if state.OriginalText == "" {
		state.OriginalText = cvText
	}
	state.OptimizedText = outputText
	if err := s.sessions.Save(ctx, state); err != nil {
		telemetry.Warn("generation.session_save_failed", map[string]any{
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
	}
}

// Get returns a generation scoped to the session.
func (s *Service) Get(ctx context.Context, sessionID, id string) (Generation, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Generation{}, err
	}
	if g.SessionID != sessionID {
		return Generation{}, ErrNotFound
	}
	return g, nil
}

// List returns the session's most recent generations.
func (s *Service) List(ctx context.Context, sessionID string, limit int) ([]Generation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListBySession(ctx, sessionID, limit)
}

// Compare returns the session's original and latest optimized CV text.
type Comparison struct {
	Original  string `json:"original"`
	Optimized string `json:"optimized"`
}

// ErrNothingToCompare is returned before any optimize run completed.
var ErrNothingToCompare = errors.New("no optimized version available yet")

func (s *Service) Compare(ctx context.Context, sessionID string) (Comparison, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Comparison{}, fmt.Errorf("load session state: %w", err)
	}
	if state.OptimizedText == "" || state.OriginalText == "" {
		return Comparison{}, ErrNothingToCompare
	}
	return Comparison{Original: state.OriginalText, Optimized: state.OptimizedText}, nil
}
