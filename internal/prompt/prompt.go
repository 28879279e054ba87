// Package prompt builds model-ready instruction text for every
// generation operation. Building is deterministic: the same operation,
// language, tier, and inputs always produce the same prompt.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/settham78ths/V2/internal/entitlement"
	"github.com/settham78ths/V2/internal/registry"
)

//go:embed templates/system_pl.txt
var systemPL string

//go:embed templates/system_en.txt
var systemEN string

//go:embed templates/optimize.txt
var tmplOptimize string

//go:embed templates/ats_check.txt
var tmplATSCheck string

//go:embed templates/grammar_check.txt
var tmplGrammarCheck string

//go:embed templates/cv_score.txt
var tmplCVScore string

//go:embed templates/interview_questions.txt
var tmplInterviewQuestions string

//go:embed templates/apply_feedback.txt
var tmplApplyFeedback string

//go:embed templates/cover_letter.txt
var tmplCoverLetter string

//go:embed templates/recruiter_feedback.txt
var tmplRecruiterFeedback string

//go:embed templates/interview_tips.txt
var tmplInterviewTips string

//go:embed templates/keyword_match.txt
var tmplKeywordMatch string

//go:embed templates/position_optimization.txt
var tmplPositionOptimize string

//go:embed templates/advanced_position_optimization.txt
var tmplAdvancedPosition string

//go:embed templates/job_posting_analysis.txt
var tmplJobPostingAnalysis string

//go:embed templates/cv_builder.txt
var tmplCVBuilder string

//go:embed templates/generate_cv_content.txt
var tmplGenerateCVContent string

var templates = map[registry.Operation]string{
	registry.OpOptimize:           tmplOptimize,
	registry.OpATSCheck:           tmplATSCheck,
	registry.OpGrammarCheck:       tmplGrammarCheck,
	registry.OpCVScore:            tmplCVScore,
	registry.OpInterviewQuestions: tmplInterviewQuestions,
	registry.OpApplyFeedback:      tmplApplyFeedback,
	registry.OpCoverLetter:        tmplCoverLetter,
	registry.OpRecruiterFeedback:  tmplRecruiterFeedback,
	registry.OpInterviewTips:      tmplInterviewTips,
	registry.OpKeywordMatch:       tmplKeywordMatch,
	registry.OpPositionOptimize:   tmplPositionOptimize,
	registry.OpAdvancedPosition:   tmplAdvancedPosition,
	registry.OpJobPostingAnalysis: tmplJobPostingAnalysis,
	registry.OpCVBuilder:          tmplCVBuilder,
	registry.OpGenerateCVContent:  tmplGenerateCVContent,
}

// DefaultLanguage is used when the requested language is unsupported.
const DefaultLanguage = "pl"

// NormalizeLanguage maps a requested language code onto the supported
// set, failing closed to the default rather than erroring.
func NormalizeLanguage(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en", "en-us", "en-gb", "english":
		return "en"
	case "pl", "pl-pl", "polish", "polski":
		return "pl"
	default:
		return DefaultLanguage
	}
}

// Inputs carries the operation-specific text the templates consume.
type Inputs struct {
	CVText      string
	JobText     string
	TargetTitle string
	CompanyName string
	Feedback    string
}

// Prompt is a fully built instruction pair for one model call.
type Prompt struct {
	System   string
	User     string
	Language string
}

// Tier only ever changes the verbosity suffix; the safety instructions
// in the system prompt are identical for every tier.
func verbositySuffix(tier entitlement.Tier) string {
	switch {
	case tier >= entitlement.TierPremium:
		return "Provide a thorough, detailed response that covers every relevant section and explains the reasoning behind key suggestions."
	case tier == entitlement.TierOneTimePaid:
		return "Provide a complete response covering all relevant sections."
	default:
		return "Keep the response concise and cover only the highest-impact points."
	}
}

// Build produces the prompt for one operation invocation.
func Build(op registry.Operation, language string, tier entitlement.Tier, in Inputs) (Prompt, error) {
	tmpl, ok := templates[op]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %s", registry.ErrUnknownOperation, op)
	}

	lang := NormalizeLanguage(language)
	system := systemPL
	if lang == "en" {
		system = systemEN
	}

	jobContext := ""
	if strings.TrimSpace(in.JobText) != "" && !strings.Contains(tmpl, "{{JOB_TEXT}}") {
		jobContext = "\nTarget job posting:\n" + in.JobText + "\n"
	}

	replacer := strings.NewReplacer(
		"{{CV_TEXT}}", in.CVText,
		"{{JOB_TEXT}}", in.JobText,
		"{{JOB_CONTEXT}}", jobContext,
		"{{TARGET_TITLE}}", in.TargetTitle,
		"{{COMPANY_NAME}}", in.CompanyName,
		"{{FEEDBACK}}", in.Feedback,
	)

	user := strings.TrimSpace(replacer.Replace(tmpl)) + "\n\n" + verbositySuffix(tier)

	return Prompt{System: system, User: user, Language: lang}, nil
}
