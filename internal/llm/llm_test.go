package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pavelanni/texquiz/internal/llm/prompts"
	"github.com/pavelanni/texquiz/internal/parser"
)

const markup = `\question What is 2+2?
\begin{choices}
\choice 3
\CorrectChoice 4
\end{choices}`

func TestExtractMarkup(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "  " + markup + "\n", markup},
		{"fenced", "```\n" + markup + "\n```", markup},
		{"fenced with language", "```latex\n" + markup + "\n```\n", markup},
		{"fence only", "```", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMarkup(tt.raw); got != tt.want {
				t.Errorf("extractMarkup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitled(t *testing.T) {
	src := titled(" Arithmetic ", markup)
	if got := parser.Title(src); got != "Arithmetic" {
		t.Errorf("Title() = %q, want 'Arithmetic'", got)
	}
	if qs := parser.Parse(src); len(qs) != 1 {
		t.Errorf("expected 1 question after titling, got %d", len(qs))
	}
}

// fakeCompletions serves a single canned chat completion.
func fakeCompletions(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"model":   "test",
				"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"}},
			})
		case strings.HasSuffix(r.URL.Path, "/models"):
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": []any{}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateQuiz(t *testing.T) {
	srv := fakeCompletions(t, "```\n"+markup+"\n```")
	c := New(srv.URL+"/v1", "test", "test")

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	gen, err := c.GenerateQuiz(context.Background(), prompts.GenerateData{Topic: "Arithmetic", Count: 1})
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(gen.Questions) != 1 || gen.Questions[0].CorrectAnswer != "4" {
		t.Errorf("unexpected questions %+v", gen.Questions)
	}
	if !strings.HasPrefix(gen.Source, `\title{Arithmetic}`) {
		t.Errorf("expected titled source, got %q", gen.Source)
	}
}

func TestGenerateQuizInvalidMarkup(t *testing.T) {
	srv := fakeCompletions(t, "Sorry, I cannot help with that.")
	c := New(srv.URL+"/v1", "test", "test")

	if _, err := c.GenerateQuiz(context.Background(), prompts.GenerateData{Topic: "x", Count: 1}); err == nil {
		t.Error("expected error for response without questions")
	}
}
