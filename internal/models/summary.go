package models

import "strings"

// Period is a reporting window ending now.
type Period string

const (
	PeriodToday   Period = "today"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
)

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodQuarter:
		return true
	}
	return false
}

// ParsePeriod maps English and Chinese period names to a Period.
// Unknown input returns ("", false).
func ParsePeriod(s string) (Period, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today", "day", "daily", "今天", "今日", "当天":
		return PeriodToday, true
	case "week", "weekly", "this week", "本周", "这周", "一周":
		return PeriodWeek, true
	case "month", "monthly", "this month", "本月", "这个月", "一个月":
		return PeriodMonth, true
	case "quarter", "quarterly", "this quarter", "本季度", "这个季度", "季度":
		return PeriodQuarter, true
	}
	return "", false
}

// Label returns the Chinese display name of the period.
func (p Period) Label() string {
	switch p {
	case PeriodToday:
		return "今天"
	case PeriodWeek:
		return "本周"
	case PeriodMonth:
		return "本月"
	case PeriodQuarter:
		return "本季度"
	}
	return string(p)
}

// ActionStats aggregates the sets of one action within a period.
type ActionStats struct {
	Sets        int     `json:"sets"`
	TotalReps   int     `json:"total_reps"`
	TotalVolume float64 `json:"total_volume"`
	MaxWeight   float64 `json:"max_weight"`
}

// PeriodSummary is derived from records and never stored.
type PeriodSummary struct {
	Period      Period                 `json:"period"`
	TotalSets   int                    `json:"total_sets"`
	TotalVolume float64                `json:"total_volume"`
	ActionStats map[string]ActionStats `json:"action_stats"`
}
