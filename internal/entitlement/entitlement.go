// Package entitlement resolves the caller's access tier from account
// state and session-scoped purchase flags.
package entitlement

import "time"

// Tier is an ordered access level. Higher tiers include everything the
// lower ones grant.
type Tier int

const (
	TierFree Tier = iota
	TierOneTimePaid
	TierPremium
	TierOverride
)

func (t Tier) String() string {
	switch t {
	case TierFree:
		return "free"
	case TierOneTimePaid:
		return "one_time_paid"
	case TierPremium:
		return "premium"
	case TierOverride:
		return "override"
	default:
		return "unknown"
	}
}

// AtLeast reports whether t grants at minimum the access of min.
func (t Tier) AtLeast(min Tier) bool {
	return t >= min
}

// Snapshot is the resolved entitlement for one request. It is computed
// once at the start of a request and passed through the pipeline so a
// mid-request purchase cannot change behavior half way.
type Snapshot struct {
	Tier       Tier
	CVBuilder  bool
	Username   string
	ResolvedAt time.Time
}

// Inputs carries the raw facts the resolver works from.
type Inputs struct {
	Username       string
	PremiumUntil   *time.Time
	SessionPaid    bool
	CVBuilderPaid  bool
	OperatorFilter func(username string) bool
}

// Resolve computes the effective tier. Override beats premium, premium
// beats a one-time session purchase, and everything else is free. The
// CV builder flag is independent of the tier ladder.
func Resolve(now time.Time, in Inputs) Snapshot {
	snap := Snapshot{
		Tier:       TierFree,
		CVBuilder:  in.CVBuilderPaid,
		Username:   in.Username,
		ResolvedAt: now,
	}

	switch {
	case in.OperatorFilter != nil && in.Username != "" && in.OperatorFilter(in.Username):
		snap.Tier = TierOverride
	case in.PremiumUntil != nil && in.PremiumUntil.After(now):
		snap.Tier = TierPremium
	case in.SessionPaid:
		snap.Tier = TierOneTimePaid
	}

	return snap
}

// OperatorList builds an OperatorFilter from a fixed username list.
func OperatorList(usernames []string) func(string) bool {
	set := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		set[u] = struct{}{}
	}
	return func(username string) bool {
		_, ok := set[username]
		return ok
	}
}
