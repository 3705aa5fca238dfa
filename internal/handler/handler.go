package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/texquiz/internal/handler/views"
	appI18n "github.com/pavelanni/texquiz/internal/i18n"
	"github.com/pavelanni/texquiz/internal/model"
	"github.com/pavelanni/texquiz/internal/parser"
	"github.com/pavelanni/texquiz/internal/quiz"
	"github.com/pavelanni/texquiz/internal/store"
)

// Handler holds shared dependencies for HTTP handlers. It drives a single
// quiz session; mu serializes requests touching it.
type Handler struct {
	store  *store.Store
	config model.QuizConfig

	mu        sync.Mutex
	session   quiz.Session
	quizID    int64
	startedAt time.Time
}

// New creates a new Handler.
func New(s *store.Store, cfg model.QuizConfig) (*Handler, error) {
	if s == nil {
		return nil, errors.New("store is required")
	}
	return &Handler{store: s, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/quiz/start", h.handleStart)
	r.Post("/quiz/library/{quizID}", h.handleLibraryStart)
	r.Get("/quiz", h.handleQuizPage)
	r.Post("/quiz/answer", h.handleAnswer)
	r.Post("/quiz/next", h.handleNext)
	r.Post("/quiz/restart", h.handleRestart)
	r.Post("/quiz/new", h.handleNew)
	r.Get("/results", h.handleResults)
	r.Route("/api", h.apiRoutes)
}

// statusFor maps session errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, quiz.ErrNoValidQuestions):
		return http.StatusUnprocessableEntity
	case errors.Is(err, quiz.ErrNotStarted):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrNotAnswered),
		errors.Is(err, quiz.ErrOutOfRange):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// importSource parses source, stores it in the library and starts a quiz.
// Callers must hold h.mu.
func (h *Handler) importSource(source string) error {
	questions := parser.Parse(source)
	if len(questions) == 0 {
		return quiz.ErrNoValidQuestions
	}
	quizID, err := h.store.SaveQuiz(model.QuizRecord{
		Title:         parser.Title(source),
		Source:        source,
		QuestionCount: len(questions),
	})
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return h.begin(quizID, questions)
}

// startStored starts a quiz from the library. Callers must hold h.mu.
func (h *Handler) startStored(quizID int64) (bool, error) {
	rec, err := h.store.GetQuiz(quizID)
	if err != nil {
		return false, fmt.Errorf("get quiz: %w", err)
	}
	if rec == nil {
		return false, nil
	}
	return true, h.begin(rec.ID, parser.Parse(rec.Source))
}

func (h *Handler) begin(quizID int64, questions []model.Question) error {
	if h.config.Shuffle {
		questions = quiz.Shuffle(questions)
	}
	if err := h.session.Begin(questions); err != nil {
		return err
	}
	h.quizID = quizID
	h.startedAt = time.Now()
	slog.Info("quiz started", "quiz_id", quizID, "questions", len(questions))
	return nil
}

// advance moves to the next question and records the attempt once the
// quiz completes. Callers must hold h.mu.
func (h *Handler) advance() error {
	if err := h.session.Advance(); err != nil {
		return err
	}
	if h.session.State() != model.StateCompleted {
		return nil
	}
	sum, err := h.session.Summary()
	if err != nil {
		return err
	}
	id, err := h.store.RecordAttempt(model.AttemptRecord{
		QuizID:    h.quizID,
		Score:     sum.Score,
		Total:     sum.Total,
		Band:      sum.Band,
		StartedAt: h.startedAt,
	})
	if err != nil {
		// History is best effort.
		slog.Error("failed to record attempt", "quiz_id", h.quizID, "error", err)
		return nil
	}
	slog.Info("quiz completed", "attempt_id", id, "score", sum.Score, "total", sum.Total, "band", sum.Band)
	return nil
}

func (h *Handler) restart() error {
	if err := h.session.Reset(); err != nil {
		return err
	}
	h.startedAt = time.Now()
	return nil
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.store.ListQuizzes()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, http.StatusOK, views.SetupPage(quizzes, "", ""))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	source := r.FormValue("source")

	h.mu.Lock()
	err := h.importSource(source)
	h.mu.Unlock()

	if errors.Is(err, quiz.ErrNoValidQuestions) {
		quizzes, lerr := h.store.ListQuizzes()
		if lerr != nil {
			slog.Error("failed to list quizzes", "error", lerr)
		}
		msg := appI18n.T(r.Context(), "NoValidQuestions")
		render(w, r, http.StatusUnprocessableEntity, views.SetupPage(quizzes, source, msg))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (h *Handler) handleLibraryStart(w http.ResponseWriter, r *http.Request) {
	quizID, err := strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid quiz ID", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	found, err := h.startStored(quizID)
	h.mu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if !found {
		http.Error(w, "quiz not found", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (h *Handler) handleQuizPage(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	snap := h.session.Snapshot()
	h.mu.Unlock()

	switch snap.State {
	case model.StateSetup:
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case model.StateCompleted:
		http.Redirect(w, r, "/results", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, views.QuizPage(snap))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	choice := r.FormValue("choice")

	h.mu.Lock()
	_, err := h.session.SubmitAnswer(choice)
	h.mu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	err := h.advance()
	state := h.session.State()
	h.mu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if state == model.StateCompleted {
		http.Redirect(w, r, "/results", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	err := h.restart()
	h.mu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (h *Handler) handleNew(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.session = quiz.Session{}
	h.quizID = 0
	h.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	sum, err := h.session.Summary()
	h.mu.Unlock()

	if err != nil {
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, views.ResultsPage(sum))
}
