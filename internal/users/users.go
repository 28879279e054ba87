// Package users holds account records the entitlement resolver reads.
package users

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// User is an account record. PremiumUntil is nil for accounts that
// never purchased a subscription.
type User struct {
	ID           string
	Username     string
	Email        string
	PremiumUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository persists accounts.
type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	SetPremiumUntil(ctx context.Context, id string, until time.Time) error
}
