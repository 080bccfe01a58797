package parser

import (
	"strings"

	"github.com/claude/gymchat/internal/models"
)

// rule is one shorthand grammar. apply reports whether the tokens match and
// returns the resulting record.
type rule struct {
	name  string
	apply func(tokens []string, last *models.Record) (models.Record, bool)
}

// rules are evaluated in order; the first match wins. Short, context-dependent
// forms come first because they dominate once a session has a last record.
var rules = []rule{
	{name: "weight-reps-inherit-action", apply: weightRepsInheritAction},
	{name: "action-weight-reps", apply: actionWeightReps},
	{name: "action-reps", apply: actionReps},
	{name: "action-weight", apply: actionWeight},
	{name: "weight-only", apply: weightOnly},
	{name: "reps-only", apply: repsOnly},
}

// weightRepsInheritAction handles "120kg 12" after a previous set.
func weightRepsInheritAction(tokens []string, last *models.Record) (models.Record, bool) {
	if len(tokens) != 2 || last == nil {
		return models.Record{}, false
	}
	w, ok := parseWeight(tokens[0])
	if !ok {
		return models.Record{}, false
	}
	reps, ok := parseReps(tokens[1])
	if !ok {
		return models.Record{}, false
	}
	return models.Record{Action: last.Action, Weight: w.value, Reps: reps}, true
}

// actionWeightReps handles the explicit "深蹲 100kg 8".
func actionWeightReps(tokens []string, _ *models.Record) (models.Record, bool) {
	n := len(tokens)
	if n < 3 {
		return models.Record{}, false
	}
	w, ok := parseWeight(tokens[n-2])
	if !ok {
		return models.Record{}, false
	}
	reps, ok := parseReps(tokens[n-1])
	if !ok {
		return models.Record{}, false
	}
	return models.Record{Action: strings.Join(tokens[:n-2], " "), Weight: w.value, Reps: reps}, true
}

// actionReps handles "引体向上 10"; weight comes from the last record or is 0.
func actionReps(tokens []string, last *models.Record) (models.Record, bool) {
	n := len(tokens)
	if n < 2 {
		return models.Record{}, false
	}
	reps, ok := parseReps(tokens[n-1])
	if !ok {
		return models.Record{}, false
	}
	action := strings.Join(tokens[:n-1], " ")
	if looksLikeWeight(action) {
		return models.Record{}, false
	}
	var w float64
	if last != nil {
		w = last.Weight
	}
	return models.Record{Action: action, Weight: w, Reps: reps}, true
}

// actionWeight handles "卧推 62.5kg"; reps come from the last record.
func actionWeight(tokens []string, last *models.Record) (models.Record, bool) {
	n := len(tokens)
	if n < 2 || last == nil {
		return models.Record{}, false
	}
	w, ok := parseWeight(tokens[n-1])
	if !ok {
		return models.Record{}, false
	}
	action := strings.Join(tokens[:n-1], " ")
	if looksLikeWeight(action) {
		return models.Record{}, false
	}
	return models.Record{Action: action, Weight: w.value, Reps: last.Reps}, true
}

// weightOnly handles "110kg". The unit is required so a bare number stays reps.
func weightOnly(tokens []string, last *models.Record) (models.Record, bool) {
	if len(tokens) != 1 || last == nil {
		return models.Record{}, false
	}
	w, ok := parseWeight(tokens[0])
	if !ok || !w.hasUnit {
		return models.Record{}, false
	}
	return models.Record{Action: last.Action, Weight: w.value, Reps: last.Reps}, true
}

// repsOnly handles "10".
func repsOnly(tokens []string, last *models.Record) (models.Record, bool) {
	if len(tokens) != 1 || last == nil {
		return models.Record{}, false
	}
	reps, ok := parseReps(tokens[0])
	if !ok {
		return models.Record{}, false
	}
	return models.Record{Action: last.Action, Weight: last.Weight, Reps: reps}, true
}
