// Package normalize extracts structured data from free-form model
// output. Normalization is total: it never fails, it only degrades.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// FallbackField is the single field name a degraded result carries.
const FallbackField = "raw"

// Result is the outcome of normalizing one raw model response.
type Result struct {
	// Fields holds the decoded object. On fallback it contains only
	// FallbackField with the untouched raw text.
	Fields map[string]any
	// Raw is the original model output, always preserved.
	Raw string
	// Fallback is true when no parsing strategy produced an object.
	Fallback bool

	source string
}

// String returns the named field as text, or "" when absent. Nested
// paths use gjson syntax ("cv.summary").
func (r Result) String(path string) string {
	if r.source == "" {
		return ""
	}
	return gjson.Get(r.source, path).String()
}

// Has reports whether the named field exists.
func (r Result) Has(path string) bool {
	if r.source == "" {
		return false
	}
	return gjson.Get(r.source, path).Exists()
}

// Text returns the primary textual content of the result: the given
// field when present, otherwise the raw output.
func (r Result) Text(field string) string {
	if s := r.String(field); s != "" {
		return s
	}
	return r.Raw
}

// Normalize runs an ordered chain of parsing strategies over raw model
// output: strict JSON parse, fenced code block extraction, brace-span
// extraction, then a raw-text fallback.
func Normalize(raw string) Result {
	for _, candidate := range candidates(raw) {
		if fields, ok := parseObject(candidate); ok {
			return Result{Fields: fields, Raw: raw, source: candidate}
		}
	}

	fallback, _ := json.Marshal(map[string]string{FallbackField: raw})
	return Result{
		Fields:   map[string]any{FallbackField: raw},
		Raw:      raw,
		Fallback: true,
		source:   string(fallback),
	}
}

func candidates(raw string) []string {
	var out []string
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		out = append(out, trimmed)
	}
	if fenced, ok := fencedBlock(raw); ok {
		out = append(out, fenced)
	}
	if span, ok := braceSpan(raw); ok {
		out = append(out, span)
	}
	return out
}

// fencedBlock returns the interior of the first ``` block, preferring
// a ```json marker when present.
func fencedBlock(raw string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(raw, marker)
		if start < 0 {
			continue
		}
		rest := raw[start+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		return strings.TrimSpace(rest[:end]), true
	}
	return "", false
}

// braceSpan returns the substring between the first '{' and the last '}'.
func braceSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func parseObject(candidate string) (map[string]any, bool) {
	if !gjson.Valid(candidate) {
		return nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, false
	}
	// "null" unmarshals into a nil map without error.
	if fields == nil {
		return nil, false
	}
	return fields, true
}
