package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordInterpretation verifies outcomes are counted under their own label.
func TestRecordInterpretation(t *testing.T) {
	before := testutil.ToFloat64(interpretations.WithLabelValues("logged"))
	RecordInterpretation("logged")
	RecordInterpretation("logged")
	if got := testutil.ToFloat64(interpretations.WithLabelValues("logged")) - before; got != 2 {
		t.Errorf("logged delta = %v, want 2", got)
	}
}

// TestRecordResolve verifies errors and successes land in separate series.
func TestRecordResolve(t *testing.T) {
	okBefore := testutil.ToFloat64(resolveRequests.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(resolveRequests.WithLabelValues("error"))

	RecordResolve(nil, 200*time.Millisecond)
	RecordResolve(errors.New("boom"), time.Second)

	if got := testutil.ToFloat64(resolveRequests.WithLabelValues("ok")) - okBefore; got != 1 {
		t.Errorf("ok delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(resolveRequests.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

// TestRecordPersistedIgnoresZero verifies the zero time leaves the gauge alone.
func TestRecordPersistedIgnoresZero(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	RecordPersisted(ts)
	RecordPersisted(time.Time{})
	if got := testutil.ToFloat64(recordPersistGauge); got != float64(ts.Unix()) {
		t.Errorf("gauge = %v, want %v", got, float64(ts.Unix()))
	}
}
