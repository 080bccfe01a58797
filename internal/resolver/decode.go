package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/gymchat/internal/models"
)

// fenceRe matches a fenced code block, with or without a language tag.
var fenceRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")

// envelope is the single JSON object the endpoint is told to return.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type logData struct {
	Action string          `json:"action"`
	Reps   json.RawMessage `json:"reps"`
	Weight json.RawMessage `json:"weight"`
	Sets   json.RawMessage `json:"sets"`
}

// stripFence returns the body of the first fenced block, or s unchanged.
func stripFence(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.TrimSpace(s)
}

// decodeIntent turns model output into an Intent. Log intents are returned
// even when incomplete; callers validate the record before persisting it.
func decodeIntent(content string) (models.Intent, error) {
	var env envelope
	if err := json.Unmarshal([]byte(stripFence(content)), &env); err != nil {
		return models.Intent{}, fmt.Errorf("parse model JSON: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(env.Type)) {
	case "log":
		return models.LogIntent(decodeRecord(env.Data)), nil
	case "summary":
		if p, ok := decodePeriod(env.Data); ok {
			return models.SummaryIntent(p), nil
		}
		return models.ChatIntent(""), nil
	case "chat":
		return models.ChatIntent(decodeText(env.Data)), nil
	case "":
		return models.Intent{}, errors.New("model JSON has no type")
	default:
		return models.ChatIntent(decodeText(env.Data)), nil
	}
}

// maxReps bounds a decoded repetition count before conversion to int.
const maxReps = math.MaxInt32

// decodeRecord extracts whatever fields are usable. Invalid reps are left at
// zero and a negative weight is kept, so the record fails validation instead
// of being guessed.
func decodeRecord(raw json.RawMessage) models.Record {
	var d logData
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.Record{}
	}

	rec := models.Record{Action: strings.TrimSpace(d.Action)}
	if reps, ok := number(d.Reps); ok && reps > 0 && reps <= maxReps && reps == math.Trunc(reps) {
		rec.Reps = int(reps)
	}
	if w, ok := number(d.Weight); ok {
		rec.Weight = w
	}
	return rec
}

func decodePeriod(raw json.RawMessage) (models.Period, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return models.ParsePeriod(s)
	}
	var obj struct {
		Period string `json:"period"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return models.ParsePeriod(obj.Period)
	}
	return "", false
}

func decodeText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Text    string `json:"text"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Text != "" {
			return strings.TrimSpace(obj.Text)
		}
		return strings.TrimSpace(obj.Message)
	}
	return ""
}

// number accepts a JSON number or a numeric string such as "60" or "60kg".
func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(strings.ToLower(s))
	for _, unit := range []string{"kg", "公斤", "千克", "次", "个"} {
		s = strings.TrimSuffix(s, unit)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
