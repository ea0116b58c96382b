package intelligence_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/arboretica/lore/internal/intelligence"
	"github.com/arboretica/lore/pkg/capability"
)

type fakeCompleter struct {
	response string
	err      error

	system string
	user   string
	opts   capability.CompleteOptions
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string, opts capability.CompleteOptions) (string, error) {
	f.system = system
	f.user = user
	f.opts = opts
	return f.response, f.err
}

func newSystem(completer capability.Completer) intelligence.System {
	return intelligence.NewSystem(completer, slog.New(slog.DiscardHandler))
}

func TestClassify(t *testing.T) {
	completer := &fakeCompleter{response: "  Contract\n"}
	sys := newSystem(completer)

	label, err := sys.Classify(context.Background(), "msa.pdf", "This agreement is entered into...")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if label != "contract" {
		t.Errorf("Classify() = %q, want %q", label, "contract")
	}
	if completer.opts.MaxTokens != 10 {
		t.Errorf("MaxTokens = %d, want 10", completer.opts.MaxTokens)
	}
	if !strings.Contains(completer.user, "Filename: msa.pdf") {
		t.Errorf("prompt missing filename: %q", completer.user)
	}
}

func TestClassifyTruncatesPreview(t *testing.T) {
	completer := &fakeCompleter{response: "other"}
	sys := newSystem(completer)

	preview := strings.Repeat("x", 2000)
	if _, err := sys.Classify(context.Background(), "big.pdf", preview); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if strings.Count(completer.user, "x") != 500 {
		t.Errorf("preview not truncated to 500 chars, got %d", strings.Count(completer.user, "x"))
	}
}

func TestSummarizeTruncatesInput(t *testing.T) {
	completer := &fakeCompleter{response: "A summary."}
	sys := newSystem(completer)

	text := strings.Repeat("y", 10000)
	summary, err := sys.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != "A summary." {
		t.Errorf("Summarize() = %q", summary)
	}
	if strings.Count(completer.user, "y") != 4000 {
		t.Errorf("input not truncated to 4000 chars, got %d", strings.Count(completer.user, "y"))
	}
	if completer.opts.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", completer.opts.MaxTokens)
	}
}

func TestExtractStructured(t *testing.T) {
	completer := &fakeCompleter{response: `{
		"obligations": [{"title": "Monthly report", "content": "Deliver by 5th"}],
		"deadlines": [{"title": "Renewal", "content": "Contract renewal", "date": "2026-10-01"}],
		"risks": [{"title": "Penalty clause", "content": "Late fees apply", "level": "high"}],
		"metrics": []
	}`}
	sys := newSystem(completer)

	extraction, err := sys.ExtractStructured(context.Background(), "full text", "contract")
	if err != nil {
		t.Fatalf("ExtractStructured() error = %v", err)
	}

	if len(extraction.Obligations) != 1 || extraction.Obligations[0].Title != "Monthly report" {
		t.Errorf("obligations = %+v", extraction.Obligations)
	}
	if len(extraction.Deadlines) != 1 || extraction.Deadlines[0].Date != "2026-10-01" {
		t.Errorf("deadlines = %+v", extraction.Deadlines)
	}
	if len(extraction.Risks) != 1 || extraction.Risks[0].Level != "high" {
		t.Errorf("risks = %+v", extraction.Risks)
	}
	if !strings.Contains(completer.user, "this contract document") {
		t.Errorf("prompt missing document type: %q", completer.user)
	}
}

func TestExtractStructuredFencedJSON(t *testing.T) {
	completer := &fakeCompleter{response: "```json\n{\"obligations\":[{\"title\":\"T\",\"content\":\"C\"}],\"deadlines\":[],\"risks\":[],\"metrics\":[]}\n```"}
	sys := newSystem(completer)

	extraction, err := sys.ExtractStructured(context.Background(), "text", "policy")
	if err != nil {
		t.Fatalf("ExtractStructured() error = %v", err)
	}
	if len(extraction.Obligations) != 1 {
		t.Errorf("obligations = %+v", extraction.Obligations)
	}
}

func TestExtractStructuredMalformed(t *testing.T) {
	completer := &fakeCompleter{response: "I could not find any structured data."}
	sys := newSystem(completer)

	extraction, err := sys.ExtractStructured(context.Background(), "text", "report")
	if err != nil {
		t.Fatalf("ExtractStructured() error = %v", err)
	}
	if !extraction.Empty() {
		t.Errorf("extraction = %+v, want empty", extraction)
	}
}

func TestExtractStructuredCompletionError(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	sys := newSystem(&fakeCompleter{err: wantErr})

	if _, err := sys.ExtractStructured(context.Background(), "text", "invoice"); !errors.Is(err, wantErr) {
		t.Errorf("ExtractStructured() error = %v, want %v", err, wantErr)
	}
}

func TestAnswer(t *testing.T) {
	completer := &fakeCompleter{response: "You owe a monthly report."}
	sys := newSystem(completer)

	answer, err := sys.Answer(context.Background(), "What do I owe?", "[obligation] Monthly report: Deliver by 5th")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != "You owe a monthly report." {
		t.Errorf("Answer() = %q", answer)
	}
	if !strings.Contains(completer.user, "Question: What do I owe?") {
		t.Errorf("prompt missing question: %q", completer.user)
	}
	if completer.opts.Temperature != 0.5 {
		t.Errorf("Temperature = %v, want 0.5", completer.opts.Temperature)
	}
}
