package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pavelanni/texquiz/internal/console"
	appI18n "github.com/pavelanni/texquiz/internal/i18n"
	"github.com/pavelanni/texquiz/internal/llm"
	"github.com/pavelanni/texquiz/internal/llm/prompts"
	"github.com/pavelanni/texquiz/internal/model"
	"github.com/pavelanni/texquiz/internal/parser"
	"github.com/pavelanni/texquiz/internal/quiz"
	"github.com/pavelanni/texquiz/internal/store"
)

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Take a quiz in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}
	f := cmd.Flags()
	f.String("db", "texquiz.db", "SQLite database for attempt history (empty disables)")
	f.Bool("shuffle", false, "Randomize question order")
	addLogFlags(cmd)
	return cmd
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a quiz file and print its valid questions as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Add quiz files to the library",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImport,
	}
	f := cmd.Flags()
	f.String("db", "texquiz.db", "SQLite database path")
	addLogFlags(cmd)
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded quiz attempts",
		RunE:  runHistory,
	}
	f := cmd.Flags()
	f.String("db", "texquiz.db", "SQLite database path")
	f.Bool("json", false, "Export quizzes and attempts as JSON")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate quiz markup with an LLM",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.StringP("topic", "t", "", "Quiz topic (required)")
	f.IntP("count", "n", 5, "Number of questions")
	f.String("audience", "", "Intended audience, e.g. \"high school students\"")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)

	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

// openOutput returns the command's output for "" or "-", otherwise a
// created file.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	w, err := openOutput(cmd, path)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}

// loadQuiz reads and parses a quiz file.
func loadQuiz(path string) (string, []model.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	source := string(data)
	questions := parser.Parse(source)
	if len(questions) == 0 {
		return source, nil, fmt.Errorf("%s: %w", path, quiz.ErrNoValidQuestions)
	}
	return source, questions, nil
}

// importQuiz stores source in the library. created is false when the same
// source was imported before.
func importQuiz(db *store.Store, source string, questions []model.Question) (id int64, created bool, err error) {
	existing, err := db.GetQuizByHash(store.HashSource(source))
	if err != nil {
		return 0, false, fmt.Errorf("look up quiz: %w", err)
	}
	if existing != nil {
		return existing.ID, false, nil
	}
	id, err = db.SaveQuiz(model.QuizRecord{
		Title:         parser.Title(source),
		Source:        source,
		QuestionCount: len(questions),
	})
	if err != nil {
		return 0, false, fmt.Errorf("save quiz: %w", err)
	}
	return id, true, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	source, questions, err := loadQuiz(args[0])
	if err != nil {
		return err
	}
	if err := appI18n.Init(); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	var db *store.Store
	if path := v.GetString("db"); path != "" {
		db, err = store.New(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
	}

	if v.GetBool("shuffle") {
		questions = quiz.Shuffle(questions)
	}
	var s quiz.Session
	if err := s.Begin(questions); err != nil {
		return err
	}

	ctx := appI18n.WithLocalizer(cmd.Context(), appI18n.NewLocalizer())
	startedAt := time.Now()
	sum, err := console.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), &s)
	if err != nil {
		return fmt.Errorf("play quiz: %w", err)
	}

	if db == nil {
		return nil
	}
	return recordPlay(db, source, questions, sum, startedAt)
}

func recordPlay(db *store.Store, source string, questions []model.Question, sum model.Summary, startedAt time.Time) error {
	quizID, _, err := importQuiz(db, source, questions)
	if err != nil {
		return err
	}
	id, err := db.RecordAttempt(model.AttemptRecord{
		QuizID:    quizID,
		Score:     sum.Score,
		Total:     sum.Total,
		Band:      sum.Band,
		StartedAt: startedAt,
	})
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	slog.Debug("recorded attempt", "attempt_id", id, "quiz_id", quizID)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	_, questions, err := loadQuiz(args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd, v.GetString("output"), questions)
}

func runImport(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var failed error
	for _, path := range args {
		source, questions, err := loadQuiz(path)
		if err != nil {
			slog.Error("skipping quiz file", "path", path, "error", err)
			failed = errors.Join(failed, err)
			continue
		}
		id, created, err := importQuiz(db, source, questions)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		if !created {
			slog.Info("quiz already in library, skipping", "path", path, "quiz_id", id)
			continue
		}
		slog.Info("imported quiz", "path", path, "quiz_id", id, "questions", len(questions))
	}
	return failed
}

func runHistory(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if v.GetBool("json") {
		export, err := db.ExportHistory()
		if err != nil {
			return fmt.Errorf("export history: %w", err)
		}
		return writeJSON(cmd, v.GetString("output"), export)
	}

	attempts, err := db.ListAttempts()
	if err != nil {
		return fmt.Errorf("list attempts: %w", err)
	}
	w, err := openOutput(cmd, v.GetString("output"))
	if err != nil {
		return err
	}
	defer w.Close()
	return printHistory(w, attempts)
}

func printHistory(out io.Writer, attempts []model.AttemptRecord) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(out, "No attempts recorded.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tQUIZ\tSCORE\tBAND\tDURATION")
	for _, a := range attempts {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\t%s\n",
			humanize.Time(a.FinishedAt),
			a.QuizTitle,
			a.Score, a.Total,
			a.Band,
			a.FinishedAt.Sub(a.StartedAt).Round(time.Second),
		)
	}
	return tw.Flush()
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	client := llm.New(v.GetString("llm-url"), v.GetString("llm-key"), v.GetString("llm-model"))
	ctx := cmd.Context()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))

	gen, err := client.GenerateQuiz(ctx, prompts.GenerateData{
		Topic:    v.GetString("topic"),
		Count:    v.GetInt("count"),
		Audience: v.GetString("audience"),
	})
	if err != nil {
		return fmt.Errorf("generate quiz: %w", err)
	}

	w, err := openOutput(cmd, v.GetString("output"))
	if err != nil {
		return err
	}
	defer w.Close()
	if _, err := io.WriteString(w, gen.Source); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	slog.Info("generated quiz", "topic", v.GetString("topic"), "questions", len(gen.Questions))
	return nil
}
