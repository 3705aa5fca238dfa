// Package prompts renders the instructions sent to the LLM.
package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"strings"
	"sync"
	"text/template"
)

//go:embed generate.txt
var generateText string

var (
	loadOnce     sync.Once
	loadErr      error
	generateTmpl *template.Template
)

// GenerateData holds template data for quiz generation prompts.
type GenerateData struct {
	Topic    string
	Count    int
	Audience string
}

func load() error {
	loadOnce.Do(func() {
		generateTmpl, loadErr = template.New("generate").Parse(generateText)
	})
	return loadErr
}

// BuildGeneratePrompt renders the quiz generation prompt.
func BuildGeneratePrompt(data GenerateData) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	data.Topic = strings.TrimSpace(data.Topic)
	if data.Topic == "" {
		return "", errors.New("topic is required")
	}
	if data.Count < 1 {
		return "", errors.New("count must be at least 1")
	}

	var buf bytes.Buffer
	if err := generateTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
