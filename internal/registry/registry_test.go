package registry

import (
	"errors"
	"testing"

	"github.com/settham78ths/V2/internal/entitlement"
)

func TestLookupUnknownOperation(t *testing.T) {
	_, err := Lookup(Operation("summon_dragon"))
	if !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("got %v, want ErrUnknownOperation", err)
	}
}

func TestBudgetsNeverDecreaseWithTier(t *testing.T) {
	for _, op := range Operations() {
		req, err := Lookup(op)
		if err != nil {
			t.Fatalf("lookup %s: %v", op, err)
		}
		prev := 0
		for tier := entitlement.TierFree; tier <= entitlement.TierOverride; tier++ {
			got := req.Budget.For(tier)
			if got <= 0 {
				t.Fatalf("%s: budget for %s is %d, want positive", op, tier, got)
			}
			if got < prev {
				t.Fatalf("%s: budget drops from %d to %d at %s", op, prev, got, tier)
			}
			prev = got
		}
	}
}

func TestGateThresholds(t *testing.T) {
	tests := []struct {
		op      Operation
		minTier entitlement.Tier
	}{
		{OpInterviewQuestions, entitlement.TierFree},
		{OpJobPostingAnalysis, entitlement.TierFree},
		{OpOptimize, entitlement.TierOneTimePaid},
		{OpATSCheck, entitlement.TierOneTimePaid},
		{OpGrammarCheck, entitlement.TierOneTimePaid},
		{OpCVScore, entitlement.TierOneTimePaid},
		{OpApplyFeedback, entitlement.TierOneTimePaid},
		{OpCoverLetter, entitlement.TierPremium},
		{OpRecruiterFeedback, entitlement.TierPremium},
		{OpInterviewTips, entitlement.TierPremium},
		{OpKeywordMatch, entitlement.TierPremium},
		{OpPositionOptimize, entitlement.TierPremium},
		{OpAdvancedPosition, entitlement.TierPremium},
	}

	for _, tt := range tests {
		req, err := Lookup(tt.op)
		if err != nil {
			t.Fatalf("lookup %s: %v", tt.op, err)
		}
		if req.MinTier != tt.minTier {
			t.Fatalf("%s: got min tier %s, want %s", tt.op, req.MinTier, tt.minTier)
		}

		below := entitlement.Snapshot{Tier: tt.minTier - 1}
		at := entitlement.Snapshot{Tier: tt.minTier}
		if tt.minTier > entitlement.TierFree && Allowed(below, req) {
			t.Fatalf("%s: tier below threshold must be rejected", tt.op)
		}
		if !Allowed(at, req) {
			t.Fatalf("%s: tier at threshold must be allowed", tt.op)
		}
	}
}

func TestOnlyOptimizeHasFreePreview(t *testing.T) {
	for _, op := range Operations() {
		req, _ := Lookup(op)
		want := op == OpOptimize
		if req.FreePreview != want {
			t.Fatalf("%s: got FreePreview=%v, want %v", op, req.FreePreview, want)
		}
	}
}

func TestCVBuilderFlagGrantsAccess(t *testing.T) {
	for _, op := range []Operation{OpCVBuilder, OpGenerateCVContent} {
		req, err := Lookup(op)
		if err != nil {
			t.Fatalf("lookup %s: %v", op, err)
		}

		free := entitlement.Snapshot{Tier: entitlement.TierFree}
		if Allowed(free, req) {
			t.Fatalf("%s: free tier without flag must be rejected", op)
		}

		premium := entitlement.Snapshot{Tier: entitlement.TierPremium}
		if Allowed(premium, req) {
			t.Fatalf("%s: premium without flag must still be rejected", op)
		}

		flagged := entitlement.Snapshot{Tier: entitlement.TierFree, CVBuilder: true}
		if !Allowed(flagged, req) {
			t.Fatalf("%s: cv builder flag must grant access", op)
		}

		operator := entitlement.Snapshot{Tier: entitlement.TierOverride}
		if !Allowed(operator, req) {
			t.Fatalf("%s: override tier must grant access", op)
		}
	}
}
