package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/pavelanni/texquiz/internal/i18n"
	"github.com/pavelanni/texquiz/internal/model"
	"github.com/pavelanni/texquiz/internal/quiz"
	"github.com/pavelanni/texquiz/internal/store"
)

const twoQuestions = `\title{Arithmetic}
\question What is 2+2?
\begin{choices}
\choice 3
\CorrectChoice 4
\end{choices}
\question What is 3+3?
\begin{choices}
\CorrectChoice 6
\choice 7
\end{choices}
`

func newTestServer(t *testing.T, cfg model.QuizConfig) (*httptest.Server, *store.Store) {
	t.Helper()
	if err := appI18n.Init(); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	h, err := New(s, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	r.Use(appI18n.Middleware())
	h.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, s
}

// noRedirect returns a client that reports redirects instead of following them.
func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := noRedirect().PostForm(srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func expectRedirect(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != want {
		t.Fatalf("expected redirect to %q, got %q", want, loc)
	}
}

func getBody(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := noRedirect().Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return resp.StatusCode, string(body)
}

func TestStartWithInvalidMarkup(t *testing.T) {
	srv, s := newTestServer(t, model.QuizConfig{})

	resp := postForm(t, srv, "/quiz/start", url.Values{"source": {"no questions here"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	count, err := s.QuizCount()
	if err != nil {
		t.Fatalf("QuizCount: %v", err)
	}
	if count != 0 {
		t.Errorf("expected nothing saved, got %d quizzes", count)
	}

	// Without a quiz the quiz page sends the user back to setup.
	status, _ := getBody(t, srv, "/quiz")
	if status != http.StatusSeeOther {
		t.Errorf("expected redirect from /quiz, got %d", status)
	}
}

func TestFullRunThroughHTML(t *testing.T) {
	srv, s := newTestServer(t, model.QuizConfig{})

	expectRedirect(t, postForm(t, srv, "/quiz/start", url.Values{"source": {twoQuestions}}), "/quiz")

	status, body := getBody(t, srv, "/quiz")
	if status != http.StatusOK {
		t.Fatalf("GET /quiz: expected 200, got %d", status)
	}
	if !strings.Contains(body, "What is 2+2?") || !strings.Contains(body, "Question 1 of 2") {
		t.Errorf("quiz page missing first question: %s", body)
	}

	expectRedirect(t, postForm(t, srv, "/quiz/answer", url.Values{"choice": {"3"}}), "/quiz")

	// A second submission for the same question is rejected.
	resp := postForm(t, srv, "/quiz/answer", url.Values{"choice": {"4"}})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate answer, got %d", resp.StatusCode)
	}

	_, body = getBody(t, srv, "/quiz")
	if !strings.Contains(body, `class="choice correct"`) || !strings.Contains(body, `class="choice incorrect"`) {
		t.Errorf("answered page missing highlights: %s", body)
	}

	expectRedirect(t, postForm(t, srv, "/quiz/next", nil), "/quiz")
	expectRedirect(t, postForm(t, srv, "/quiz/answer", url.Values{"choice": {"6"}}), "/quiz")
	expectRedirect(t, postForm(t, srv, "/quiz/next", nil), "/results")

	status, body = getBody(t, srv, "/results")
	if status != http.StatusOK {
		t.Fatalf("GET /results: expected 200, got %d", status)
	}
	if !strings.Contains(body, "1/2") || !strings.Contains(body, "Good effort!") {
		t.Errorf("results page missing score: %s", body)
	}

	attempts, err := s.ListAttempts()
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(attempts))
	}
	if attempts[0].Score != 1 || attempts[0].QuizTitle != "Arithmetic" {
		t.Errorf("unexpected attempt %+v", attempts[0])
	}

	expectRedirect(t, postForm(t, srv, "/quiz/restart", nil), "/quiz")
	_, body = getBody(t, srv, "/quiz")
	if !strings.Contains(body, "Question 1 of 2") {
		t.Errorf("restart did not return to first question: %s", body)
	}

	expectRedirect(t, postForm(t, srv, "/quiz/new", nil), "/")
	_, body = getBody(t, srv, "/")
	if !strings.Contains(body, "Arithmetic") {
		t.Errorf("setup page missing library entry: %s", body)
	}
}

func TestNextBeforeAnswer(t *testing.T) {
	srv, _ := newTestServer(t, model.QuizConfig{})
	expectRedirect(t, postForm(t, srv, "/quiz/start", url.Values{"source": {twoQuestions}}), "/quiz")

	resp := postForm(t, srv, "/quiz/next", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLibraryStart(t *testing.T) {
	srv, s := newTestServer(t, model.QuizConfig{Shuffle: true})

	id, err := s.SaveQuiz(model.QuizRecord{Title: "Stored", Source: twoQuestions, QuestionCount: 2})
	if err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}

	resp := postForm(t, srv, "/quiz/library/9999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown quiz, got %d", resp.StatusCode)
	}
	resp = postForm(t, srv, "/quiz/library/abc", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad ID, got %d", resp.StatusCode)
	}

	expectRedirect(t, postForm(t, srv, "/quiz/library/"+strconv.FormatInt(id, 10), nil), "/quiz")
	status, body := getBody(t, srv, "/quiz")
	if status != http.StatusOK || !strings.Contains(body, "Question 1 of 2") {
		t.Errorf("library quiz not started: %d %s", status, body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no questions", quiz.ErrNoValidQuestions, http.StatusUnprocessableEntity},
		{"not started", quiz.ErrNotStarted, http.StatusBadRequest},
		{"wrapped not started", fmt.Errorf("%w: quiz not completed", quiz.ErrNotStarted), http.StatusBadRequest},
		{"already answered", quiz.ErrAlreadyAnswered, http.StatusConflict},
		{"not answered", quiz.ErrNotAnswered, http.StatusConflict},
		{"out of range", quiz.ErrOutOfRange, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
