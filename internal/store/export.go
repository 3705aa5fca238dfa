package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/texquiz/internal/model"
)

// ExportHistory builds an export-ready snapshot of the library and all attempts.
func (s *Store) ExportHistory() (model.HistoryExport, error) {
	quizzes, err := s.ListQuizzes()
	if err != nil {
		return model.HistoryExport{}, fmt.Errorf("list quizzes: %w", err)
	}
	attempts, err := s.ListAttempts()
	if err != nil {
		return model.HistoryExport{}, fmt.Errorf("list attempts: %w", err)
	}

	// Keep empty lists as [] in JSON.
	if quizzes == nil {
		quizzes = []model.QuizRecord{}
	}
	if attempts == nil {
		attempts = []model.AttemptRecord{}
	}

	return model.HistoryExport{
		ExportedAt: time.Now(),
		Quizzes:    quizzes,
		Attempts:   attempts,
	}, nil
}
