// Package registry declares every generation operation the service
// offers, the entitlement each one requires, and the output budget it
// gets per tier.
package registry

import (
	"errors"
	"fmt"

	"github.com/settham78ths/V2/internal/entitlement"
)

// Operation names a single generation capability.
type Operation string

const (
	OpOptimize           Operation = "optimize"
	OpATSCheck           Operation = "ats_check"
	OpGrammarCheck       Operation = "grammar_check"
	OpCVScore            Operation = "cv_score"
	OpInterviewQuestions Operation = "interview_questions"
	OpApplyFeedback      Operation = "apply_feedback"
	OpCoverLetter        Operation = "cover_letter"
	OpRecruiterFeedback  Operation = "recruiter_feedback"
	OpInterviewTips      Operation = "interview_tips"
	OpKeywordMatch       Operation = "keyword_match"
	OpPositionOptimize   Operation = "position_optimization"
	OpAdvancedPosition   Operation = "advanced_position_optimization"
	OpJobPostingAnalysis Operation = "job_posting_analysis"
	OpCVBuilder          Operation = "cv_builder"
	OpGenerateCVContent  Operation = "generate_cv_content"
)

// ErrUnknownOperation is returned for operations not in the registry.
var ErrUnknownOperation = errors.New("unknown operation")

// Flag names a standalone purchase independent of the tier ladder.
type Flag string

const FlagCVBuilder Flag = "cv_builder"

// Budget maps each tier to the maximum output tokens an operation may
// produce at that tier. Values never decrease as the tier rises.
type Budget [4]int

// For returns the budget for the given tier.
func (b Budget) For(tier entitlement.Tier) int {
	if tier < entitlement.TierFree || tier > entitlement.TierOverride {
		return b[entitlement.TierFree]
	}
	return b[tier]
}

// Requirement declares how an operation is gated.
type Requirement struct {
	// MinTier is the lowest tier allowed to run the operation.
	MinTier entitlement.Tier
	// Flag, when set, grants access regardless of tier.
	Flag Flag
	// FreePreview means the operation always dispatches; unentitled
	// callers get the free budget and a watermarked result instead of
	// a rejection.
	FreePreview bool
	// Budget is the per-tier output token budget.
	Budget Budget
}

var operations = map[Operation]Requirement{
	OpOptimize: {
		MinTier:     entitlement.TierOneTimePaid,
		FreePreview: true,
		Budget:      Budget{3000, 6000, 6000, 6000},
	},
	OpATSCheck: {
		MinTier: entitlement.TierOneTimePaid,
		Budget:  Budget{2000, 4000, 4000, 4000},
	},
	OpGrammarCheck: {
		MinTier: entitlement.TierOneTimePaid,
		Budget:  Budget{2000, 4000, 4000, 4000},
	},
	OpCVScore: {
		MinTier: entitlement.TierOneTimePaid,
		Budget:  Budget{2000, 4000, 4000, 4000},
	},
	OpApplyFeedback: {
		MinTier: entitlement.TierOneTimePaid,
		Budget:  Budget{4000, 4000, 6000, 6000},
	},
	OpInterviewQuestions: {
		MinTier: entitlement.TierFree,
		Budget:  Budget{2000, 4000, 4000, 4000},
	},
	OpJobPostingAnalysis: {
		MinTier: entitlement.TierFree,
		Budget:  Budget{2000, 4000, 4000, 4000},
	},
	OpCoverLetter: {
		MinTier: entitlement.TierPremium,
		Budget:  Budget{3000, 3000, 6000, 6000},
	},
	OpRecruiterFeedback: {
		MinTier: entitlement.TierPremium,
		Budget:  Budget{3000, 3000, 6000, 6000},
	},
	OpInterviewTips: {
		MinTier: entitlement.TierPremium,
		Budget:  Budget{3000, 3000, 6000, 6000},
	},
	OpKeywordMatch: {
		MinTier: entitlement.TierPremium,
		Budget:  Budget{3000, 3000, 6000, 6000},
	},
	OpPositionOptimize: {
		MinTier: entitlement.TierPremium,
		Budget:  Budget{4000, 4000, 8000, 8000},
	},
	OpAdvancedPosition: {
		MinTier: entitlement.TierPremium,
		Budget:  Budget{4000, 4000, 8000, 8000},
	},
	OpCVBuilder: {
		MinTier: entitlement.TierOverride,
		Flag:    FlagCVBuilder,
		Budget:  Budget{4000, 4000, 6000, 6000},
	},
	OpGenerateCVContent: {
		MinTier: entitlement.TierOverride,
		Flag:    FlagCVBuilder,
		Budget:  Budget{4000, 4000, 6000, 6000},
	},
}

// Lookup returns the requirement for op.
func Lookup(op Operation) (Requirement, error) {
	req, ok := operations[op]
	if !ok {
		return Requirement{}, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}
	return req, nil
}

// Allowed reports whether the snapshot satisfies the operation's gate.
func Allowed(snap entitlement.Snapshot, req Requirement) bool {
	if snap.Tier.AtLeast(req.MinTier) {
		return true
	}
	if req.Flag == FlagCVBuilder && snap.CVBuilder {
		return true
	}
	return false
}

// Operations lists all registered operations.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operations))
	for op := range operations {
		ops = append(ops, op)
	}
	return ops
}
