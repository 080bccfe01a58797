package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/gymchat/internal/models"
)

// newTestServer returns an endpoint that answers every completion with content
// and hands the decoded request to inspect.
func newTestServer(t *testing.T, content string, inspect func(chatRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
}

func newClient(url string) *Client {
	return New(Config{Endpoint: url + "/v1/", APIKey: "test-key", Model: "test-model", Temperature: 0.1}, slog.Default())
}

// TestResolveLog verifies a plain JSON log response becomes a Log intent and
// that the request carries the chat-completions shape.
func TestResolveLog(t *testing.T) {
	ts := newTestServer(t, `{"type":"log","data":{"action":"弯举","sets":1,"reps":10,"weight":30}}`, func(req chatRequest) {
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature != 0.1 {
			t.Errorf("temperature = %v", req.Temperature)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %q", req.ResponseFormat.Type)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Fatalf("messages = %+v", req.Messages)
		}
		if req.Messages[1].Content != "弯举 五组十次 三十公斤" {
			t.Errorf("user content = %q", req.Messages[1].Content)
		}
		if strings.Contains(req.Messages[0].Content, "上一次的训练记录") {
			t.Error("prompt contains inheritance rules without a last record")
		}
	})
	defer ts.Close()

	intent, err := newClient(ts.URL).Resolve(context.Background(), "弯举 五组十次 三十公斤", nil)
	if err != nil {
		t.Fatal(err)
	}
	if intent.Kind != models.IntentLog || intent.Record == nil {
		t.Fatalf("intent = %+v, want log", intent)
	}
	if r := intent.Record; r.Action != "弯举" || r.Reps != 10 || r.Weight != 30 {
		t.Errorf("record = %+v", *r)
	}
}

// TestResolveAppendsInheritanceRules verifies the last record is described in
// the system prompt.
func TestResolveAppendsInheritanceRules(t *testing.T) {
	ts := newTestServer(t, `{"type":"log","data":{"action":"深蹲","reps":15,"weight":100}}`, func(req chatRequest) {
		sys := req.Messages[0].Content
		for _, want := range []string{"上一次的训练记录", "深蹲", "100kg", "只更新次数", "更新重量和次数", "忽略上一次的记录"} {
			if !strings.Contains(sys, want) {
				t.Errorf("system prompt missing %q", want)
			}
		}
	})
	defer ts.Close()

	last := &models.Record{Action: "深蹲", Weight: 100, Reps: 8}
	if _, err := newClient(ts.URL).Resolve(context.Background(), "我又做了15个", last); err != nil {
		t.Fatal(err)
	}
}

// TestResolveFailures verifies that transport, status and decode failures all
// surface as ErrUnavailable.
func TestResolveFailures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
		}))
		defer ts.Close()
		_, err := newClient(ts.URL).Resolve(context.Background(), "hi", nil)
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("err = %v, want ErrUnavailable", err)
		}
		if !strings.Contains(err.Error(), "503") {
			t.Errorf("err = %v, want status detail", err)
		}
	})

	t.Run("no choices", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer ts.Close()
		if _, err := newClient(ts.URL).Resolve(context.Background(), "hi", nil); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("err = %v, want ErrUnavailable", err)
		}
	})

	t.Run("malformed content", func(t *testing.T) {
		ts := newTestServer(t, "sure! here is your record", nil)
		defer ts.Close()
		if _, err := newClient(ts.URL).Resolve(context.Background(), "hi", nil); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("err = %v, want ErrUnavailable", err)
		}
	})

	t.Run("network", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := ts.URL
		ts.Close()
		if _, err := newClient(url).Resolve(context.Background(), "hi", nil); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("err = %v, want ErrUnavailable", err)
		}
	})
}

// TestResolveMakesSingleRequest verifies failures are not retried.
func TestResolveMakesSingleRequest(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	newClient(ts.URL).Resolve(context.Background(), "hi", nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

// TestDecodeIntent covers fenced payloads, every type and malformed fields.
func TestDecodeIntent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.Intent
		wantErr bool
	}{
		{
			name:    "fenced json",
			content: "```json\n{\"type\":\"log\",\"data\":{\"action\":\"深蹲\",\"reps\":8,\"weight\":100}}\n```",
			want:    models.LogIntent(models.Record{Action: "深蹲", Reps: 8, Weight: 100}),
		},
		{
			name:    "fence without language",
			content: "```\n{\"type\":\"chat\",\"data\":\"你好\"}\n```",
			want:    models.ChatIntent("你好"),
		},
		{
			name:    "string numbers",
			content: `{"type":"log","data":{"action":" 卧推 ","reps":"10","weight":"60kg"}}`,
			want:    models.LogIntent(models.Record{Action: "卧推", Reps: 10, Weight: 60}),
		},
		{
			name:    "missing reps stays incomplete",
			content: `{"type":"log","data":{"action":"深蹲","weight":100}}`,
			want:    models.LogIntent(models.Record{Action: "深蹲", Weight: 100}),
		},
		{
			name:    "fractional reps rejected",
			content: `{"type":"log","data":{"action":"深蹲","reps":8.5}}`,
			want:    models.LogIntent(models.Record{Action: "深蹲"}),
		},
		{
			name:    "negative weight kept for validation",
			content: `{"type":"log","data":{"action":"深蹲","reps":8,"weight":-10}}`,
			want:    models.LogIntent(models.Record{Action: "深蹲", Reps: 8, Weight: -10}),
		},
		{
			name:    "huge reps rejected",
			content: `{"type":"log","data":{"action":"深蹲","reps":1e30,"weight":100}}`,
			want:    models.LogIntent(models.Record{Action: "深蹲", Weight: 100}),
		},
		{
			name:    "reps above int32 rejected",
			content: `{"type":"log","data":{"action":"深蹲","reps":"3000000000"}}`,
			want:    models.LogIntent(models.Record{Action: "深蹲"}),
		},
		{
			name:    "summary object",
			content: `{"type":"summary","data":{"period":"week"}}`,
			want:    models.SummaryIntent(models.PeriodWeek),
		},
		{
			name:    "summary string chinese",
			content: `{"type":"summary","data":"本月"}`,
			want:    models.SummaryIntent(models.PeriodMonth),
		},
		{
			name:    "summary bad period",
			content: `{"type":"summary","data":{"period":"decade"}}`,
			want:    models.ChatIntent(""),
		},
		{
			name:    "unknown type passes text through",
			content: `{"type":"question","data":"深蹲怎么做？"}`,
			want:    models.ChatIntent("深蹲怎么做？"),
		},
		{name: "no type", content: `{"data":"x"}`, wantErr: true},
		{name: "not json", content: "hello", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeIntent(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decodeIntent(%q) = %+v, want error", tt.content, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Kind != tt.want.Kind || got.Period != tt.want.Period || got.Text != tt.want.Text {
				t.Errorf("decodeIntent = %+v, want %+v", got, tt.want)
			}
			if tt.want.Record != nil {
				if got.Record == nil || *got.Record != *tt.want.Record {
					t.Errorf("record = %+v, want %+v", got.Record, *tt.want.Record)
				}
			}
		})
	}
}
