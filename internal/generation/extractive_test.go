package generation

import (
	"context"
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("What is Go?", "[Source 1]: Go is a programming language.")

	for _, want := range []string{
		"Context information is below:",
		"[Source 1]: Go is a programming language.",
		"[Source X] notation",
		"Question: What is Go?",
		"Answer:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestSplitPrompt_RoundTrip(t *testing.T) {
	context := "[Source 1]: Go was designed at Google.\n\n[Source 2]: Gophers are rodents."
	prompt := BuildPrompt("Where was Go designed?", context)

	question, got := splitPrompt(prompt)
	if question != "Where was Go designed?" {
		t.Errorf("question = %q", question)
	}
	if got != context {
		t.Errorf("context = %q, want %q", got, context)
	}
}

func TestSplitPrompt_NoDelimiters(t *testing.T) {
	question, context := splitPrompt("just some text")
	if question != "" {
		t.Errorf("expected empty question, got %q", question)
	}
	if context != "just some text" {
		t.Errorf("context = %q", context)
	}
}

func TestExtractive_PrefersQuestionTerms(t *testing.T) {
	ctxText := "[Source 1]: The gopher mascot was drawn by Renee French. " +
		"Compilation in Go is famously fast.\n\n" +
		"[Source 2]: Garbage collection pauses in Go are under a millisecond."
	prompt := BuildPrompt("Who drew the gopher mascot?", ctxText)

	answer, err := NewExtractive(1).Generate(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.Contains(answer, "Renee French") {
		t.Errorf("expected the mascot sentence to win, got %q", answer)
	}
	if !strings.Contains(answer, "[Source 1]") {
		t.Errorf("expected [Source 1] attribution, got %q", answer)
	}
}

func TestExtractive_KeepsOriginalSentenceOrder(t *testing.T) {
	ctxText := "[Source 1]: Alpha systems process events. Beta systems process events. Gamma systems process events."
	prompt := BuildPrompt("systems events", ctxText)

	answer, err := NewExtractive(3).Generate(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	alpha := strings.Index(answer, "Alpha")
	beta := strings.Index(answer, "Beta")
	gamma := strings.Index(answer, "Gamma")
	if alpha < 0 || beta < 0 || gamma < 0 {
		t.Fatalf("expected all three sentences, got %q", answer)
	}
	if !(alpha < beta && beta < gamma) {
		t.Errorf("selected sentences out of original order: %q", answer)
	}
}

func TestExtractive_EmptyContext(t *testing.T) {
	answer, err := NewExtractive(3).Generate(context.Background(), BuildPrompt("anything", ""))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer == "" {
		t.Error("expected a non-empty fallback answer")
	}
}

func TestExtractive_ContextWithoutSourceLabels(t *testing.T) {
	prompt := BuildPrompt("ships", "Ships sail the sea. Trains ride on rails.")

	answer, err := NewExtractive(1).Generate(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(answer, "[Source") {
		t.Errorf("unlabeled context must not grow labels, got %q", answer)
	}
	if !strings.Contains(answer, "Ships") {
		t.Errorf("expected the question-term sentence, got %q", answer)
	}
}
