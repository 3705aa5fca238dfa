package prompts

import (
	"strings"
	"testing"
)

func TestBuildGeneratePrompt(t *testing.T) {
	prompt, err := BuildGeneratePrompt(GenerateData{Topic: " Go channels ", Count: 3, Audience: "beginners"})
	if err != nil {
		t.Fatalf("BuildGeneratePrompt: %v", err)
	}
	for _, want := range []string{
		"exactly 3 questions about: Go channels",
		"The audience is: beginners",
		`\CorrectChoice`,
		`\begin{choices}`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
}

func TestBuildGeneratePromptNoAudience(t *testing.T) {
	prompt, err := BuildGeneratePrompt(GenerateData{Topic: "history", Count: 1})
	if err != nil {
		t.Fatalf("BuildGeneratePrompt: %v", err)
	}
	if strings.Contains(prompt, "audience") {
		t.Error("prompt should not mention audience when empty")
	}
}

func TestBuildGeneratePromptValidation(t *testing.T) {
	tests := []struct {
		name string
		data GenerateData
	}{
		{"empty topic", GenerateData{Topic: "  ", Count: 3}},
		{"zero count", GenerateData{Topic: "math", Count: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildGeneratePrompt(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}
