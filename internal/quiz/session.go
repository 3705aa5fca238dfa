// Package quiz implements the single-pass quiz session state machine.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/pavelanni/texquiz/internal/model"
)

var (
	// ErrNoValidQuestions is returned by Begin for an empty question sequence.
	ErrNoValidQuestions = errors.New("no valid questions")
	// ErrNotStarted is returned when an operation needs a begun quiz.
	ErrNotStarted = errors.New("quiz not started")
	// ErrAlreadyAnswered is returned by SubmitAnswer for an answered question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNotAnswered is returned by Advance before the current question is answered.
	ErrNotAnswered = errors.New("question not answered")
	// ErrOutOfRange is returned when there is no current question.
	ErrOutOfRange = errors.New("no current question")
)

// Session is a quiz over a fixed sequence of questions. The zero value is
// in the setup state; call Begin to start it. A Session is not safe for
// concurrent use.
type Session struct {
	questions []model.Question
	index     int
	score     int
	answered  bool
	verdict   *model.Verdict
}

// Begin starts a new quiz over questions, discarding any prior progress.
func (s *Session) Begin(questions []model.Question) error {
	if len(questions) == 0 {
		return ErrNoValidQuestions
	}
	s.questions = slices.Clone(questions)
	s.restart()
	return nil
}

// Reset restarts the current quiz from the first question with a zero score.
func (s *Session) Reset() error {
	if s.questions == nil {
		return ErrNotStarted
	}
	s.restart()
	return nil
}

func (s *Session) restart() {
	s.index = 0
	s.score = 0
	s.answered = false
	s.verdict = nil
}

// State reports the lifecycle state.
func (s *Session) State() model.State {
	switch {
	case s.questions == nil:
		return model.StateSetup
	case s.index == len(s.questions):
		return model.StateCompleted
	case s.answered:
		return model.StateAnswered
	}
	return model.StateActive
}

// current checks that there is a question at the current index.
func (s *Session) current() error {
	switch s.State() {
	case model.StateSetup:
		return ErrNotStarted
	case model.StateCompleted:
		return ErrOutOfRange
	}
	return nil
}

// CurrentQuestion returns the question being presented.
func (s *Session) CurrentQuestion() (model.Question, error) {
	if err := s.current(); err != nil {
		return model.Question{}, err
	}
	return s.questions[s.index], nil
}

// SubmitAnswer scores choice against the current question. Each question
// accepts exactly one submission; later ones fail with ErrAlreadyAnswered
// and leave the score unchanged.
func (s *Session) SubmitAnswer(choice string) (model.Verdict, error) {
	if err := s.current(); err != nil {
		return model.Verdict{}, err
	}
	if s.answered {
		return model.Verdict{}, ErrAlreadyAnswered
	}

	q := s.questions[s.index]
	selected := strings.TrimSpace(choice)
	answer := strings.TrimSpace(q.CorrectAnswer)

	v := model.Verdict{
		Selected: selected,
		Correct:  selected == answer,
		Choices:  make([]model.ChoiceVerdict, len(q.Choices)),
	}
	for i, c := range q.Choices {
		text := strings.TrimSpace(c)
		v.Choices[i] = model.ChoiceVerdict{
			Text:       c,
			IsAnswer:   text == answer,
			IsSelected: text == selected,
		}
	}

	if v.Correct {
		s.score++
	}
	s.answered = true
	s.verdict = &v
	return v, nil
}

// Advance moves past an answered question. After the last question the
// session is completed.
func (s *Session) Advance() error {
	if err := s.current(); err != nil {
		return err
	}
	if !s.answered {
		return ErrNotAnswered
	}
	s.index++
	s.answered = false
	s.verdict = nil
	return nil
}

// ProgressFraction reports the share of questions answered so far. It
// ticks forward when a question is answered, not when it is shown.
func (s *Session) ProgressFraction() float64 {
	if s.questions == nil {
		return 0
	}
	done := s.index
	if s.answered {
		done++
	}
	return float64(done) / float64(len(s.questions))
}

// Summary returns the final score. It is only available once the quiz
// is completed.
func (s *Session) Summary() (model.Summary, error) {
	switch s.State() {
	case model.StateSetup:
		return model.Summary{}, ErrNotStarted
	case model.StateCompleted:
		total := len(s.questions)
		return model.Summary{
			Score: s.score,
			Total: total,
			Band:  model.BandFor(s.score, total),
		}, nil
	}
	return model.Summary{}, fmt.Errorf("%w: quiz not completed", ErrNotStarted)
}

// Score returns the number of correct answers so far.
func (s *Session) Score() int { return s.score }

// Total returns the number of questions.
func (s *Session) Total() int { return len(s.questions) }

// Index returns the zero-based position of the current question.
func (s *Session) Index() int { return s.index }

// Answered reports whether the current question has been answered.
func (s *Session) Answered() bool { return s.answered }

// Verdict returns the verdict for the current question, or nil before it
// is answered.
func (s *Session) Verdict() *model.Verdict { return s.verdict }

// Questions returns a copy of the question sequence.
func (s *Session) Questions() []model.Question { return slices.Clone(s.questions) }

// Snapshot captures everything a presentation layer needs to render the
// session.
func (s *Session) Snapshot() model.Snapshot {
	snap := model.Snapshot{
		State:    s.State(),
		Index:    s.index,
		Total:    len(s.questions),
		Score:    s.score,
		Progress: s.ProgressFraction(),
		Answered: s.answered,
	}
	if q, err := s.CurrentQuestion(); err == nil {
		snap.Prompt = q.Prompt
		snap.Choices = slices.Clone(q.Choices)
	}
	if s.verdict != nil {
		v := *s.verdict
		v.Choices = slices.Clone(v.Choices)
		snap.Verdict = &v
	}
	return snap
}

// Shuffle returns a copy of questions in random order.
func Shuffle(questions []model.Question) []model.Question {
	shuffled := slices.Clone(questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
