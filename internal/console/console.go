// Package console drives a quiz session on a terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	appI18n "github.com/pavelanni/texquiz/internal/i18n"
	"github.com/pavelanni/texquiz/internal/model"
	"github.com/pavelanni/texquiz/internal/quiz"
)

var marks = map[model.Highlight]string{
	model.HighlightNone:      "   ",
	model.HighlightCorrect:   " ✓ ",
	model.HighlightIncorrect: " ✗ ",
}

// Run plays a begun session to completion, reading answers from in and
// writing questions and verdicts to out.
func Run(ctx context.Context, in io.Reader, out io.Writer, s *quiz.Session) (model.Summary, error) {
	sc := bufio.NewScanner(in)
	for s.State() != model.StateCompleted {
		if err := ctx.Err(); err != nil {
			return model.Summary{}, err
		}
		q, err := s.CurrentQuestion()
		if err != nil {
			return model.Summary{}, err
		}
		printQuestion(ctx, out, s, q)

		choice, err := readChoice(ctx, sc, out, q)
		if err != nil {
			return model.Summary{}, err
		}
		v, err := s.SubmitAnswer(choice)
		if err != nil {
			return model.Summary{}, err
		}
		printVerdict(ctx, out, v)

		fmt.Fprintf(out, "%s\n", appI18n.T(ctx, "PressEnter"))
		sc.Scan()
		if err := s.Advance(); err != nil {
			return model.Summary{}, err
		}
	}

	sum, err := s.Summary()
	if err != nil {
		return model.Summary{}, err
	}
	fmt.Fprintf(out, "\n%s: %s\n%s\n",
		appI18n.T(ctx, "ResultsHeading"),
		appI18n.Td(ctx, "ScoreNofM", map[string]any{"Score": sum.Score, "Total": sum.Total}),
		appI18n.BandMessage(ctx, sum.Band),
	)
	return sum, nil
}

func printQuestion(ctx context.Context, out io.Writer, s *quiz.Session, q model.Question) {
	fmt.Fprintf(out, "\n%s [%3.0f%%]\n%s\n",
		appI18n.Td(ctx, "QuestionNofM", map[string]any{"N": s.Index() + 1, "M": s.Total()}),
		s.ProgressFraction()*100,
		q.Prompt,
	)
	for i, c := range q.Choices {
		fmt.Fprintf(out, "  %d) %s\n", i+1, c)
	}
}

// readChoice accepts either a choice number or the choice text. Blank
// lines are skipped.
func readChoice(ctx context.Context, sc *bufio.Scanner, out io.Writer, q model.Question) (string, error) {
	for {
		fmt.Fprint(out, appI18n.T(ctx, "AnswerPrompt"))
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("read answer: %w", err)
			}
			return "", fmt.Errorf("read answer: %w", io.ErrUnexpectedEOF)
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(q.Choices) {
			return q.Choices[n-1], nil
		}
		return line, nil
	}
}

func printVerdict(ctx context.Context, out io.Writer, v model.Verdict) {
	var answer string
	for i, c := range v.Choices {
		fmt.Fprintf(out, "%s%d) %s\n", marks[v.Highlight(i)], i+1, c.Text)
		if c.IsAnswer && answer == "" {
			answer = c.Text
		}
	}
	if v.Correct {
		fmt.Fprintln(out, appI18n.T(ctx, "Correct"))
		return
	}
	fmt.Fprintln(out, appI18n.Td(ctx, "Incorrect", map[string]any{"Answer": answer}))
}
