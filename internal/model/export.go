package model

import "time"

// QuizRecord is a quiz source stored in the library.
type QuizRecord struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Source        string    `json:"-"`
	SourceHash    string    `json:"source_hash"`
	QuestionCount int       `json:"question_count"`
	ImportedAt    time.Time `json:"imported_at"`
}

// AttemptRecord is one finished run through a quiz.
type AttemptRecord struct {
	ID         string    `json:"id"`
	QuizID     int64     `json:"quiz_id"`
	QuizTitle  string    `json:"quiz_title,omitempty"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Band       Band      `json:"band"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// HistoryExport is the top-level JSON structure for attempt history export.
type HistoryExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	Quizzes    []QuizRecord    `json:"quizzes"`
	Attempts   []AttemptRecord `json:"attempts"`
}
