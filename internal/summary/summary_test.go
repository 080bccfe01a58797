package summary

import (
	"reflect"
	"testing"
	"time"

	"github.com/claude/gymchat/internal/models"
)

// TestSummarizeBenchPress is the three-set bench press scenario:
// (8,50),(8,55),(6,60) → 3 sets, 1200 volume, 22 reps, max 60.
func TestSummarizeBenchPress(t *testing.T) {
	records := []models.Record{
		{Action: "卧推", Reps: 8, Weight: 50},
		{Action: "卧推", Reps: 8, Weight: 55},
		{Action: "卧推", Reps: 6, Weight: 60},
	}
	s := Summarize(records, models.PeriodToday)

	if s.TotalSets != 3 {
		t.Errorf("TotalSets = %d, want 3", s.TotalSets)
	}
	if s.TotalVolume != 1200 {
		t.Errorf("TotalVolume = %v, want 1200", s.TotalVolume)
	}
	want := models.ActionStats{Sets: 3, TotalReps: 22, TotalVolume: 1200, MaxWeight: 60}
	if got := s.ActionStats["卧推"]; got != want {
		t.Errorf("ActionStats[卧推] = %+v, want %+v", got, want)
	}
}

// TestSummarizeIdempotentAndOrderIndependent verifies repeated and reordered
// folds produce identical summaries.
func TestSummarizeIdempotentAndOrderIndependent(t *testing.T) {
	records := []models.Record{
		{Action: "深蹲", Reps: 8, Weight: 100},
		{Action: "卧推", Reps: 10, Weight: 60},
		{Action: "深蹲", Reps: 6, Weight: 110},
		{Action: "引体向上", Reps: 12, Weight: 0},
	}
	reversed := make([]models.Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	a := Summarize(records, models.PeriodWeek)
	b := Summarize(records, models.PeriodWeek)
	c := Summarize(reversed, models.PeriodWeek)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated Summarize differs: %+v vs %+v", a, b)
	}
	if !reflect.DeepEqual(a, c) {
		t.Errorf("reordered Summarize differs: %+v vs %+v", a, c)
	}
	if got := a.ActionStats["引体向上"].MaxWeight; got != 0 {
		t.Errorf("bodyweight MaxWeight = %v, want 0", got)
	}
}

// TestSummarizeUnknownPeriod verifies an invalid period produces an empty summary.
func TestSummarizeUnknownPeriod(t *testing.T) {
	s := Summarize([]models.Record{{Action: "深蹲", Reps: 5, Weight: 100}}, models.Period("year"))
	if s.TotalSets != 0 || s.TotalVolume != 0 || len(s.ActionStats) != 0 {
		t.Errorf("Summarize(unknown) = %+v, want empty", s)
	}
}

// TestStart checks each window boundary against a fixed clock.
func TestStart(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	// Thursday 2026-05-14 15:30 local
	now := time.Date(2026, 5, 14, 15, 30, 0, 0, loc)

	tests := []struct {
		period models.Period
		want   time.Time
	}{
		{models.PeriodToday, time.Date(2026, 5, 14, 0, 0, 0, 0, loc)},
		{models.PeriodWeek, time.Date(2026, 5, 10, 0, 0, 0, 0, loc)},
		{models.PeriodMonth, time.Date(2026, 5, 1, 0, 0, 0, 0, loc)},
		{models.PeriodQuarter, time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		got, ok := Start(tt.period, now)
		if !ok {
			t.Errorf("Start(%s) not ok", tt.period)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Start(%s) = %v, want %v", tt.period, got, tt.want)
		}
	}

	if _, ok := Start("year", now); ok {
		t.Error("Start(year) should not be ok")
	}
}

// TestStartWeekOnSunday verifies that on a Sunday the week starts that same midnight.
func TestStartWeekOnSunday(t *testing.T) {
	now := time.Date(2026, 5, 17, 9, 0, 0, 0, time.UTC)
	got, _ := Start(models.PeriodWeek, now)
	if want := time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Start(week) on Sunday = %v, want %v", got, want)
	}
}

// TestStartQuarterBoundaries checks the first month of each quarter.
func TestStartQuarterBoundaries(t *testing.T) {
	for month, want := range map[time.Month]time.Month{
		time.January: time.January, time.March: time.January,
		time.April: time.April, time.June: time.April,
		time.July: time.July, time.September: time.July,
		time.October: time.October, time.December: time.October,
	} {
		now := time.Date(2026, month, 20, 12, 0, 0, 0, time.UTC)
		got, _ := Start(models.PeriodQuarter, now)
		if got.Month() != want || got.Day() != 1 {
			t.Errorf("Start(quarter) in %s = %v, want %s 1", month, got, want)
		}
	}
}

// TestOrdered checks display ordering by volume, sets and name.
func TestOrdered(t *testing.T) {
	s := Summarize([]models.Record{
		{Action: "b", Reps: 10, Weight: 0},
		{Action: "a", Reps: 10, Weight: 0},
		{Action: "c", Reps: 5, Weight: 100},
		{Action: "b", Reps: 10, Weight: 0},
	}, models.PeriodToday)

	var got []string
	for _, l := range Ordered(s) {
		got = append(got, l.Action)
	}
	if want := []string{"c", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Ordered = %v, want %v", got, want)
	}
}
