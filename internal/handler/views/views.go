// Package views renders the quiz pages as templ components.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/texquiz/internal/i18n"
	"github.com/pavelanni/texquiz/internal/model"
)

const style = `
body { font-family: system-ui, sans-serif; max-width: 42rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; min-height: 16rem; font-family: monospace; }
.error { color: #b00020; }
.progress { background: #eee; height: .5rem; border-radius: .25rem; }
.progress > div { background: #3b82f6; height: 100%; border-radius: .25rem; }
.choice { display: block; width: 100%; text-align: left; margin: .25rem 0; padding: .5rem; }
.choice.correct { background: #d1fae5; border-color: #10b981; }
.choice.incorrect { background: #fee2e2; border-color: #ef4444; }
.prompt { white-space: pre-wrap; }
`

// writer accumulates the first write error so page bodies read top to bottom.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) rawf(format string, args ...any) {
	if w.err == nil {
		_, w.err = fmt.Fprintf(w.w, format, args...)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func page(body func(ctx context.Context, w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw(`<title>`)
		w.text(appI18n.T(ctx, "AppTitle"))
		w.raw(`</title><style>` + style + `</style></head><body><h1>`)
		w.text(appI18n.T(ctx, "AppTitle"))
		w.raw(`</h1>`)
		body(ctx, w)
		w.raw(`</body></html>`)
		return w.err
	})
}

func button(w *writer, action, label string) {
	w.raw(`<form method="post" action="`)
	w.text(action)
	w.raw(`"><button type="submit">`)
	w.text(label)
	w.raw(`</button></form>`)
}

// SetupPage shows the markup input and the quiz library. source is echoed
// back after a failed parse.
func SetupPage(quizzes []model.QuizRecord, source, errMsg string) templ.Component {
	return page(func(ctx context.Context, w *writer) {
		w.raw(`<h2>`)
		w.text(appI18n.T(ctx, "SetupHeading"))
		w.raw(`</h2><p>`)
		w.text(appI18n.T(ctx, "SetupHint"))
		w.raw(`</p>`)
		if errMsg != "" {
			w.raw(`<p class="error" role="alert">`)
			w.text(errMsg)
			w.raw(`</p>`)
		}
		w.raw(`<form method="post" action="/quiz/start"><textarea name="source">`)
		w.text(source)
		w.raw(`</textarea><button type="submit">`)
		w.text(appI18n.T(ctx, "StartQuiz"))
		w.raw(`</button></form>`)

		w.raw(`<h2>`)
		w.text(appI18n.T(ctx, "Library"))
		w.raw(`</h2>`)
		if len(quizzes) == 0 {
			w.raw(`<p>`)
			w.text(appI18n.T(ctx, "LibraryEmpty"))
			w.raw(`</p>`)
			return
		}
		w.raw(`<ul>`)
		for _, q := range quizzes {
			w.raw(`<li>`)
			w.text(q.Title)
			w.raw(` (`)
			w.text(appI18n.Tp(ctx, "QuestionsAvailable", q.QuestionCount))
			w.raw(`)`)
			button(w, fmt.Sprintf("/quiz/library/%d", q.ID), appI18n.T(ctx, "Play"))
			w.raw(`</li>`)
		}
		w.raw(`</ul>`)
	})
}

// QuizPage shows the current question and, once answered, the verdict.
func QuizPage(snap model.Snapshot) templ.Component {
	return page(func(ctx context.Context, w *writer) {
		w.rawf(`<div class="progress"><div style="width: %.0f%%"></div></div>`, snap.Progress*100)
		w.raw(`<p>`)
		w.text(appI18n.Td(ctx, "QuestionNofM", map[string]any{"N": snap.Index + 1, "M": snap.Total}))
		w.raw(`</p><h2 class="prompt">`)
		w.text(snap.Prompt)
		w.raw(`</h2>`)

		w.raw(`<form method="post" action="/quiz/answer">`)
		for i, c := range snap.Choices {
			class := "choice"
			disabled := ""
			if snap.Verdict != nil {
				if h := snap.Verdict.Highlight(i); h != model.HighlightNone {
					class += " " + string(h)
				}
				disabled = " disabled"
			}
			w.rawf(`<button type="submit" name="choice" class="%s"%s value="`, class, disabled)
			w.text(c)
			w.raw(`">`)
			w.text(c)
			w.raw(`</button>`)
		}
		w.raw(`</form>`)

		if snap.Verdict == nil {
			return
		}
		w.raw(`<p role="status">`)
		if snap.Verdict.Correct {
			w.text(appI18n.T(ctx, "Correct"))
		} else {
			w.text(appI18n.Td(ctx, "Incorrect", map[string]any{"Answer": answerText(snap.Verdict)}))
		}
		w.raw(`</p>`)
		label := appI18n.T(ctx, "Next")
		if snap.Index+1 == snap.Total {
			label = appI18n.T(ctx, "SeeResults")
		}
		button(w, "/quiz/next", label)
	})
}

func answerText(v *model.Verdict) string {
	for _, c := range v.Choices {
		if c.IsAnswer {
			return c.Text
		}
	}
	return ""
}

// ResultsPage shows the final score and band message.
func ResultsPage(sum model.Summary) templ.Component {
	return page(func(ctx context.Context, w *writer) {
		w.raw(`<h2>`)
		w.text(appI18n.T(ctx, "ResultsHeading"))
		w.raw(`</h2><p class="score">`)
		w.text(appI18n.Td(ctx, "ScoreNofM", map[string]any{"Score": sum.Score, "Total": sum.Total}))
		w.raw(`</p><p class="band">`)
		w.text(appI18n.BandMessage(ctx, sum.Band))
		w.raw(`</p>`)
		button(w, "/quiz/restart", appI18n.T(ctx, "Restart"))
		button(w, "/quiz/new", appI18n.T(ctx, "NewQuiz"))
	})
}
