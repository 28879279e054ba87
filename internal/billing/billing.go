// Package billing applies verified payments to session flags and
// account premium expiry. Payment capture itself happens at the
// provider; this service only records the outcome.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/settham78ths/V2/internal/session"
	"github.com/settham78ths/V2/internal/users"
)

// ErrPaymentNotVerified is returned when the payment intent cannot be
// confirmed.
var ErrPaymentNotVerified = errors.New("payment not verified")

// Verifier confirms a payment intent with the payment provider.
type Verifier interface {
	Verify(ctx context.Context, intentID string) (bool, error)
}

// StaticVerifier accepts a fixed set of intent IDs. Used for local
// development and tests; production wires a real provider client.
type StaticVerifier struct {
	intents map[string]struct{}
}

func NewStaticVerifier(intentIDs []string) *StaticVerifier {
	set := make(map[string]struct{}, len(intentIDs))
	for _, id := range intentIDs {
		set[id] = struct{}{}
	}
	return &StaticVerifier{intents: set}
}

func (v *StaticVerifier) Verify(_ context.Context, intentID string) (bool, error) {
	_, ok := v.intents[intentID]
	return ok, nil
}

// Service applies verified payments.
type Service struct {
	sessions        session.Store
	users           users.Repository
	verifier        Verifier
	premiumDuration time.Duration
}

func NewService(sessions session.Store, userRepo users.Repository, verifier Verifier) *Service {
	return &Service{
		sessions:        sessions,
		users:           userRepo,
		verifier:        verifier,
		premiumDuration: 30 * 24 * time.Hour,
	}
}

// VerifySessionPayment marks the session as one-time paid.
func (s *Service) VerifySessionPayment(ctx context.Context, sessionID, intentID string) error {
	if err := s.confirm(ctx, intentID); err != nil {
		return err
	}
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	state.PaidAccess = true
	if err := s.sessions.Save(ctx, state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// VerifyCVBuilderPayment sets the standalone CV builder flag. It is
// independent of the tier ladder.
func (s *Service) VerifyCVBuilderPayment(ctx context.Context, sessionID, intentID string) error {
	if err := s.confirm(ctx, intentID); err != nil {
		return err
	}
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	state.CVBuilderAccess = true
	if err := s.sessions.Save(ctx, state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ActivatePremium extends the account's premium expiry and returns the
// new expiry timestamp.
func (s *Service) ActivatePremium(ctx context.Context, userID, intentID string) (time.Time, error) {
	if err := s.confirm(ctx, intentID); err != nil {
		return time.Time{}, err
	}
	until := time.Now().UTC().Add(s.premiumDuration)
	if err := s.users.SetPremiumUntil(ctx, userID, until); err != nil {
		return time.Time{}, fmt.Errorf("activate premium: %w", err)
	}
	return until, nil
}

func (s *Service) confirm(ctx context.Context, intentID string) error {
	if intentID == "" {
		return ErrPaymentNotVerified
	}
	ok, err := s.verifier.Verify(ctx, intentID)
	if err != nil {
		return fmt.Errorf("verify payment: %w", err)
	}
	if !ok {
		return ErrPaymentNotVerified
	}
	return nil
}
