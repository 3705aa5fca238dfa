package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pavelanni/texquiz/internal/model"
)

func initCatalog(t *testing.T) context.Context {
	t.Helper()
	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLocalizer(context.Background(), NewLocalizer())
}

func TestTranslate(t *testing.T) {
	ctx := initCatalog(t)

	got := T(ctx, "AppTitle")
	if got != "TeX Quiz" {
		t.Errorf("T(AppTitle) = %q, want 'TeX Quiz'", got)
	}

	got = T(ctx, "StartQuiz")
	if got != "Start Quiz" {
		t.Errorf("T(StartQuiz) = %q, want 'Start Quiz'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initCatalog(t)

	got1 := Tp(ctx, "QuestionsAvailable", 1)
	if got1 != "1 question" {
		t.Errorf("Tp(QuestionsAvailable, 1) = %q, want '1 question'", got1)
	}

	got5 := Tp(ctx, "QuestionsAvailable", 5)
	if got5 != "5 questions" {
		t.Errorf("Tp(QuestionsAvailable, 5) = %q, want '5 questions'", got5)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initCatalog(t)

	got := Td(ctx, "QuestionNofM", map[string]any{"N": 2, "M": 4})
	if got != "Question 2 of 4" {
		t.Errorf("Td(QuestionNofM) = %q, want 'Question 2 of 4'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initCatalog(t)

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestBandMessage(t *testing.T) {
	ctx := initCatalog(t)

	tests := []struct {
		band model.Band
		want string
	}{
		{model.BandPerfect, "Perfect! You nailed it!"},
		{model.BandGreat, "Great job! Keep it up!"},
		{model.BandGoodEffort, "Good effort! Try again to improve your score!"},
		{model.Band("unknown"), "unknown"},
	}
	for _, tt := range tests {
		if got := BandMessage(ctx, tt.band); got != tt.want {
			t.Errorf("BandMessage(%q) = %q, want %q", tt.band, got, tt.want)
		}
	}
}

func TestFallbackWithoutLocalizer(t *testing.T) {
	initCatalog(t)
	if got := T(context.Background(), "Next"); got != "Next" {
		t.Errorf("T(Next) without localizer = %q, want 'Next'", got)
	}
}

func TestMiddleware(t *testing.T) {
	initCatalog(t)

	tests := []struct {
		name   string
		accept string
	}{
		{"no header", ""},
		{"english", "en-US,en;q=0.9"},
		{"unshipped language", "fr-FR,fr;q=0.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = T(r.Context(), "AppTitle")
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != "TeX Quiz" {
				t.Errorf("T(AppTitle) = %q, want 'TeX Quiz'", got)
			}
		})
	}
}
