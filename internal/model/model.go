package model

// Question is a single multiple-choice question with exactly one answer key.
type Question struct {
	Prompt        string   `json:"prompt"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correct_answer"`
}

// State is the position of a quiz session in its lifecycle.
type State string

const (
	StateSetup     State = "setup"
	StateActive    State = "active"
	StateAnswered  State = "answered"
	StateCompleted State = "completed"
)

// Band is the qualitative tier reported in a quiz summary.
type Band string

const (
	BandPerfect    Band = "perfect"
	BandGreat      Band = "great"
	BandGoodEffort Band = "good_effort"
)

// greatThreshold is the minimum score ratio for BandGreat.
const greatThreshold = 0.7

// BandFor classifies a final score. total must be positive.
func BandFor(score, total int) Band {
	if score == total {
		return BandPerfect
	}
	if float64(score)/float64(total) >= greatThreshold {
		return BandGreat
	}
	return BandGoodEffort
}

// Highlight tells a presentation layer how to mark a choice after an answer.
type Highlight string

const (
	HighlightNone      Highlight = ""
	HighlightCorrect   Highlight = "correct"
	HighlightIncorrect Highlight = "incorrect"
)

// ChoiceVerdict classifies one choice of an answered question.
type ChoiceVerdict struct {
	Text       string `json:"text"`
	IsAnswer   bool   `json:"is_answer"`
	IsSelected bool   `json:"is_selected"`
}

// Verdict is the outcome of a single answer submission.
type Verdict struct {
	Selected string          `json:"selected"`
	Correct  bool            `json:"correct"`
	Choices  []ChoiceVerdict `json:"choices"`
}

// Highlight returns the marking for choice i: the answer key is always
// marked correct, and a wrong selection is marked incorrect.
func (v Verdict) Highlight(i int) Highlight {
	if i < 0 || i >= len(v.Choices) {
		return HighlightNone
	}
	c := v.Choices[i]
	switch {
	case c.IsAnswer:
		return HighlightCorrect
	case c.IsSelected && !v.Correct:
		return HighlightIncorrect
	}
	return HighlightNone
}

// Summary is the final result of a completed quiz.
type Summary struct {
	Score int  `json:"score"`
	Total int  `json:"total"`
	Band  Band `json:"band"`
}

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	State    State    `json:"state"`
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Score    int      `json:"score"`
	Prompt   string   `json:"prompt,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Progress float64  `json:"progress"`
	Answered bool     `json:"answered"`
	Verdict  *Verdict `json:"verdict,omitempty"`
}

// QuizConfig holds runtime quiz parameters set via CLI flags.
type QuizConfig struct {
	Shuffle     bool     // randomize question order before each start
	CORSOrigins []string // allowed origins for the JSON API
}
