package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/gymchat/internal/interpret"
	"github.com/claude/gymchat/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestInterpret verifies the client posts the utterance with auth headers
// and decodes the reply.
func TestInterpret(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/interpret": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method=%s, want POST", r.Method)
			}
			if got := r.Header.Get("X-API-Key"); got != "key" {
				t.Errorf("X-API-Key=%q, want key", got)
			}
			if got := r.Header.Get("X-User-ID"); got != "alice" {
				t.Errorf("X-User-ID=%q, want alice", got)
			}
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["text"] != "深蹲 100kg 8" {
				t.Errorf("text=%q", body["text"])
			}
			writeTestJSON(t, w, interpret.Reply{
				Text:    "记录成功",
				Outcome: interpret.OutcomeLogged,
				Record:  &models.Record{Action: "深蹲", Weight: 100, Reps: 8, Sets: 1},
			})
		},
	})
	defer ts.Close()

	reply, err := NewHTTPClient(ts.URL+"/", "key").Interpret(context.Background(), "alice", "深蹲 100kg 8")
	if err != nil {
		t.Fatal(err)
	}
	if reply.Outcome != interpret.OutcomeLogged || reply.Record == nil || reply.Record.Sets != 1 {
		t.Errorf("reply=%+v", reply)
	}
}

// TestSummary verifies the period query param and struct decoding.
func TestSummary(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/summary": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("period"); got != "week" {
				t.Errorf("period=%q, want week", got)
			}
			writeTestJSON(t, w, models.PeriodSummary{
				Period:      models.PeriodWeek,
				TotalSets:   3,
				TotalVolume: 1200,
				ActionStats: map[string]models.ActionStats{"卧推": {Sets: 3, TotalReps: 24, TotalVolume: 1200, MaxWeight: 50}},
			})
		},
	})
	defer ts.Close()

	s, err := NewHTTPClient(ts.URL, "").Summary(context.Background(), "alice", models.PeriodWeek)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalVolume != 1200 || s.ActionStats["卧推"].MaxWeight != 50 {
		t.Errorf("summary=%+v", s)
	}
}

// TestRecords verifies the client parses a JSON array response.
func TestRecords(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/records": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-API-Key"); got != "" {
				t.Errorf("X-API-Key=%q, want none", got)
			}
			writeTestJSON(t, w, []models.Record{
				{Action: "深蹲", Weight: 100, Reps: 10, Sets: 2},
				{Action: "深蹲", Weight: 100, Reps: 8, Sets: 1},
			})
		},
	})
	defer ts.Close()

	records, err := NewHTTPClient(ts.URL, "").Records(context.Background(), "alice", models.PeriodToday)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Reps != 10 {
		t.Errorf("records=%+v", records)
	}
}

// TestHTTPClientError verifies a non-200 response becomes an error.
func TestHTTPClientError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/summary": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid period"}`, http.StatusBadRequest)
		},
	})
	defer ts.Close()

	if _, err := NewHTTPClient(ts.URL, "").Summary(context.Background(), "alice", "decade"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}
