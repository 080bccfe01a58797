// Package summary folds records into period statistics.
package summary

import (
	"sort"
	"time"

	"github.com/claude/gymchat/internal/models"
)

// Summarize aggregates records into a PeriodSummary. The result does not
// depend on record order. An unknown period yields an empty summary.
func Summarize(records []models.Record, period models.Period) models.PeriodSummary {
	s := models.PeriodSummary{
		Period:      period,
		ActionStats: make(map[string]models.ActionStats),
	}
	if !period.Valid() {
		return s
	}

	for _, r := range records {
		volume := float64(r.Reps) * r.Weight
		s.TotalSets++
		s.TotalVolume += volume

		st, seen := s.ActionStats[r.Action]
		st.Sets++
		st.TotalReps += r.Reps
		st.TotalVolume += volume
		if !seen || r.Weight > st.MaxWeight {
			st.MaxWeight = r.Weight
		}
		s.ActionStats[r.Action] = st
	}
	return s
}

// Start returns the beginning of period's window in now's location:
// local midnight for today, the most recent Sunday for week, the first of the
// month, or the first day of the current three-month block.
func Start(period models.Period, now time.Time) (time.Time, bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case models.PeriodToday:
		return midnight, true
	case models.PeriodWeek:
		return midnight.AddDate(0, 0, -int(now.Weekday())), true
	case models.PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	case models.PeriodQuarter:
		first := time.Month((int(now.Month())-1)/3*3 + 1)
		return time.Date(now.Year(), first, 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

// ActionLine is one row of a summary ordered for display.
type ActionLine struct {
	Action string
	models.ActionStats
}

// Ordered returns the per-action stats sorted by volume, then sets, then name.
func Ordered(s models.PeriodSummary) []ActionLine {
	lines := make([]ActionLine, 0, len(s.ActionStats))
	for action, st := range s.ActionStats {
		lines = append(lines, ActionLine{Action: action, ActionStats: st})
	}
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.TotalVolume != b.TotalVolume {
			return a.TotalVolume > b.TotalVolume
		}
		if a.Sets != b.Sets {
			return a.Sets > b.Sets
		}
		return a.Action < b.Action
	})
	return lines
}
