// Package parser turns shorthand set descriptions such as "深蹲 100kg 8" or a
// bare "10" into records, inheriting omitted fields from the previous record.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/gymchat/internal/models"
)

var (
	// repsRe matches a bare integer with an optional count suffix: 8, 12次, 10个
	repsRe = regexp.MustCompile(`^(\d+)(?:次|个|下)?$`)

	// weightRe matches a signed decimal with an optional unit: 100, 62.5kg, +20公斤
	weightRe = regexp.MustCompile(`(?i)^([+-]?\d+(?:\.\d+)?)\s*(kgs?|公斤|千克)?$`)

	numberRe = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?$`)
	unitRe   = regexp.MustCompile(`(?i)^(?:kgs?|公斤|千克)$`)

	// weightSuffixRe matches a weight glued to a word: 深蹲100kg
	weightSuffixRe = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:kgs?|公斤|千克)$`)
)

// Parse extracts a record from a single line of text. last is the previous
// record of the session and may be nil. It returns nil when no rule applies,
// which callers treat as a signal to fall back to semantic resolution.
func Parse(text string, last *models.Record) *models.Record {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	tokens := joinUnits(strings.Fields(text))

	for _, r := range rules {
		if rec, ok := r.apply(tokens, last); ok {
			rec.Normalize()
			if rec.Validate() != nil {
				continue
			}
			return &rec
		}
	}
	return nil
}

// weight is a parsed weight token.
type weight struct {
	value   float64
	hasUnit bool
}

// parseReps returns the repetition count of a reps-shaped token.
func parseReps(tok string) (int, bool) {
	m := repsRe.FindStringSubmatch(tok)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseWeight returns the value of a weight-shaped token. Negative and
// non-finite values are rejected.
func parseWeight(tok string) (weight, bool) {
	m := weightRe.FindStringSubmatch(strings.TrimSpace(tok))
	if m == nil {
		return weight{}, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return weight{}, false
	}
	return weight{value: v, hasUnit: m[2] != ""}, true
}

// joinUnits attaches a detached unit to the number before it, so "60 公斤"
// reads as the single weight "60公斤".
func joinUnits(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if n := len(out); n > 0 && unitRe.MatchString(tok) && numberRe.MatchString(out[n-1]) {
			out[n-1] += tok
			continue
		}
		out = append(out, tok)
	}
	return out
}

// looksLikeWeight reports whether an action candidate carries a weight: a
// weight-shaped token, a stray unit, or a weight glued to the name as in
// "深蹲100kg". Such input goes to semantic resolution instead.
// Numeric-only exercise names are accepted false negatives.
func looksLikeWeight(s string) bool {
	for _, f := range strings.Fields(s) {
		if weightRe.MatchString(f) || unitRe.MatchString(f) || weightSuffixRe.MatchString(f) {
			return true
		}
	}
	return false
}
