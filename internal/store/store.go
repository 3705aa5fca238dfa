package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/texquiz/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quizzes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		source_hash TEXT NOT NULL UNIQUE,
		question_count INTEGER NOT NULL,
		imported_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		quiz_id INTEGER NOT NULL,
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		band TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// HashSource returns the hex SHA-256 of a quiz source.
func HashSource(source string) string {
	h := sha256.Sum256([]byte(source))
	return hex.EncodeToString(h[:])
}

// SaveQuiz stores a quiz source in the library. A source that is already
// stored is not duplicated; its existing ID is returned.
func (s *Store) SaveQuiz(q model.QuizRecord) (int64, error) {
	if q.SourceHash == "" {
		q.SourceHash = HashSource(q.Source)
	}
	existing, err := s.GetQuizByHash(q.SourceHash)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	res, err := s.db.Exec(
		`INSERT INTO quizzes (title, source, source_hash, question_count, imported_at)
		 VALUES (?, ?, ?, ?, ?)`,
		q.Title, q.Source, q.SourceHash, q.QuestionCount, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const quizColumns = `id, title, source, source_hash, question_count, imported_at`

func scanQuiz(row interface{ Scan(...any) error }) (*model.QuizRecord, error) {
	var q model.QuizRecord
	err := row.Scan(&q.ID, &q.Title, &q.Source, &q.SourceHash, &q.QuestionCount, &q.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetQuiz returns a stored quiz by ID, or nil if it does not exist.
func (s *Store) GetQuiz(id int64) (*model.QuizRecord, error) {
	return scanQuiz(s.db.QueryRow(`SELECT `+quizColumns+` FROM quizzes WHERE id = ?`, id))
}

// GetQuizByHash returns a stored quiz by source hash, or nil if it does not exist.
func (s *Store) GetQuizByHash(hash string) (*model.QuizRecord, error) {
	return scanQuiz(s.db.QueryRow(`SELECT `+quizColumns+` FROM quizzes WHERE source_hash = ?`, hash))
}

// ListQuizzes returns all stored quizzes, newest first.
func (s *Store) ListQuizzes() ([]model.QuizRecord, error) {
	rows, err := s.db.Query(`SELECT ` + quizColumns + ` FROM quizzes ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var quizzes []model.QuizRecord
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// QuizCount returns the number of quizzes in the library.
func (s *Store) QuizCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM quizzes`).Scan(&count)
	return count, err
}

// RecordAttempt stores a finished attempt and returns its ID.
func (s *Store) RecordAttempt(a model.AttemptRecord) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.FinishedAt.IsZero() {
		a.FinishedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO attempts (id, quiz_id, score, total, band, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.QuizID, a.Score, a.Total, a.Band, a.StartedAt, a.FinishedAt,
	)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// ListAttempts returns all attempts with their quiz titles, newest first.
func (s *Store) ListAttempts() ([]model.AttemptRecord, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.quiz_id, q.title, a.score, a.total, a.band, a.started_at, a.finished_at
		 FROM attempts a JOIN quizzes q ON q.id = a.quiz_id
		 ORDER BY a.finished_at DESC, a.rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var attempts []model.AttemptRecord
	for rows.Next() {
		var a model.AttemptRecord
		if err := rows.Scan(&a.ID, &a.QuizID, &a.QuizTitle, &a.Score, &a.Total, &a.Band, &a.StartedAt, &a.FinishedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
