// Package parser turns quiz markup into validated questions.
//
// The markup is a small LaTeX-like dialect:
//
//	\question What is 2+2?
//	\begin{choices}
//	\choice 3
//	\CorrectChoice 4
//	\choice 5
//	\end{choices}
//
// Parsing is tolerant: blocks that cannot produce a valid question are
// skipped silently and the surviving questions are returned in order.
package parser

import (
	"strings"

	"github.com/pavelanni/texquiz/internal/model"
)

const (
	questionToken = `\question`
	choicesOpen   = `\begin{choices}`
	choicesClose  = `\end{choices}`
	choiceMarker  = `\choice`
	correctMarker = `\CorrectChoice`
	titleOpen     = `\title{`
)

// Parse extracts all valid questions from text. It returns nil when no
// block survives validation.
func Parse(text string) []model.Question {
	blocks := strings.Split(text, questionToken)
	var questions []model.Question
	// Anything before the first delimiter is preamble.
	for _, block := range blocks[1:] {
		if q, ok := parseBlock(block); ok {
			questions = append(questions, q)
		}
	}
	return questions
}

func parseBlock(block string) (model.Question, bool) {
	open := strings.Index(block, choicesOpen)
	if open < 0 {
		return model.Question{}, false
	}
	prompt := strings.TrimSpace(block[:open])

	rest := block[open+len(choicesOpen):]
	end := strings.Index(rest, choicesClose)
	if end < 0 {
		return model.Question{}, false
	}

	choices, answer := parseChoices(rest[:end])
	if answer == "" {
		answer = strayAnswer(rest[end+len(choicesClose):])
	}

	q := model.Question{Prompt: prompt, Choices: choices, CorrectAnswer: answer}
	if !valid(q) {
		return model.Question{}, false
	}
	return q, true
}

// parseChoices classifies each line of a choices block. The last correct
// marker in the block sets the answer.
func parseChoices(body string) (choices []string, answer string) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, choiceMarker):
			choices = append(choices, strings.TrimSpace(strings.TrimPrefix(line, choiceMarker)))
		case strings.HasPrefix(line, correctMarker):
			text := strings.TrimSpace(strings.TrimPrefix(line, correctMarker))
			choices = append(choices, text)
			answer = text
		}
	}
	return choices, answer
}

// strayAnswer looks for a correct marker after the choices block. The last
// marker wins and its text runs to the end of the block.
func strayAnswer(tail string) string {
	i := strings.LastIndex(tail, correctMarker)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(tail[i+len(correctMarker):])
}

func valid(q model.Question) bool {
	if q.Prompt == "" || len(q.Choices) == 0 || q.CorrectAnswer == "" {
		return false
	}
	for _, c := range q.Choices {
		if strings.TrimSpace(c) == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// Title returns the text of a \title{...} command in the preamble, or the
// first valid question's prompt when there is none.
func Title(text string) string {
	preamble, _, _ := strings.Cut(text, questionToken)
	if i := strings.Index(preamble, titleOpen); i >= 0 {
		rest := preamble[i+len(titleOpen):]
		if j := strings.Index(rest, "}"); j >= 0 {
			if t := strings.TrimSpace(rest[:j]); t != "" {
				return t
			}
		}
	}
	if qs := Parse(text); len(qs) > 0 {
		return qs[0].Prompt
	}
	return ""
}
