package generations

import (
	"errors"
	"fmt"

	"github.com/settham78ths/V2/internal/entitlement"
	"github.com/settham78ths/V2/internal/registry"
)

// ErrMissingCVText is returned when a CV-consuming operation arrives
// with neither pasted text nor an upload reference.
var ErrMissingCVText = errors.New("cv text is required for this operation")

// GateRejectedError means the caller lacks the entitlement for a
// hard-gated operation. It carries the upgrade path that would unlock
// the operation so the client can show it.
type GateRejectedError struct {
	Operation    registry.Operation
	CallerTier   entitlement.Tier
	RequiredTier entitlement.Tier
	RequiredFlag registry.Flag
}

func (e *GateRejectedError) Error() string {
	return fmt.Sprintf("operation %s requires %s, caller has %s", e.Operation, e.requirement(), e.CallerTier)
}

func (e *GateRejectedError) requirement() string {
	if e.RequiredFlag != "" {
		return fmt.Sprintf("the %s add-on", e.RequiredFlag)
	}
	return fmt.Sprintf("tier %s", e.RequiredTier)
}

// Hint describes what the caller can buy to unlock the operation.
func (e *GateRejectedError) Hint() string {
	if e.RequiredFlag == registry.FlagCVBuilder {
		return "Purchase the CV builder add-on to use this feature."
	}
	switch e.RequiredTier {
	case entitlement.TierPremium:
		return "Upgrade to premium to use this feature."
	case entitlement.TierOneTimePaid:
		return "Complete a one-time payment to use this feature."
	default:
		return "This feature requires a paid plan."
	}
}
