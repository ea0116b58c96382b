package advisor_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/internal/advisor"
	"github.com/arboretica/lore/internal/intelligence"
	"github.com/arboretica/lore/internal/knowledge"
	"github.com/arboretica/lore/pkg/vector"
)

type fakeKnowledge struct {
	knowledge.System

	companyID uuid.UUID
	query     vector.Vector
	k         int
	matches   []knowledge.Match
	err       error
}

func (f *fakeKnowledge) Search(_ context.Context, companyID uuid.UUID, query vector.Vector, k int) ([]knowledge.Match, error) {
	f.companyID = companyID
	f.query = query
	f.k = k
	return f.matches, f.err
}

type fakeIntel struct {
	question string
	context_ string
	answer   string
	err      error
}

func (f *fakeIntel) Classify(context.Context, string, string) (string, error) { return "", nil }
func (f *fakeIntel) Summarize(context.Context, string) (string, error)        { return "", nil }

func (f *fakeIntel) ExtractStructured(context.Context, string, string) (intelligence.Extraction, error) {
	return intelligence.Extraction{}, nil
}

func (f *fakeIntel) Answer(_ context.Context, question, context_ string) (string, error) {
	f.question = question
	f.context_ = context_
	return f.answer, f.err
}

type fakeEmbedder struct {
	vec vector.Vector
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) (vector.Vector, error) { return f.vec, f.err }
func (f *fakeEmbedder) Dimension() int                                       { return len(f.vec) }

func entry(knowledgeType, title, content string) knowledge.Entry {
	return knowledge.Entry{
		ID:            uuid.New(),
		KnowledgeType: knowledgeType,
		Title:         title,
		Content:       content,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
}

func TestAskGroundedAnswer(t *testing.T) {
	high := knowledge.RiskHigh
	riskEntry := entry(knowledge.TypeRisk, "Penalty clause", "Late fees apply")
	riskEntry.RiskLevel = &high

	know := &fakeKnowledge{
		matches: []knowledge.Match{
			{Entry: entry(knowledge.TypeObligation, "Monthly report", "Deliver by the 5th"), Distance: 0.1},
			{Entry: riskEntry, Distance: 0.3},
		},
	}
	intel := &fakeIntel{answer: "You must deliver a monthly report."}
	sys := advisor.New(know, intel, &fakeEmbedder{vec: vector.Vector{0.1, 0.2}}, slog.New(slog.DiscardHandler))

	companyID := uuid.New()
	result, err := sys.Ask(context.Background(), companyID, "What are my obligations?", 2)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if result.Answer != "You must deliver a monthly report." {
		t.Errorf("answer = %q", result.Answer)
	}
	if know.companyID != companyID {
		t.Errorf("search company = %s, want %s", know.companyID, companyID)
	}
	if know.k != 2 {
		t.Errorf("search k = %d, want 2", know.k)
	}

	if !strings.Contains(intel.context_, "[obligation] Monthly report: Deliver by the 5th") {
		t.Errorf("context missing obligation line: %q", intel.context_)
	}
	if !strings.Contains(intel.context_, "[risk] Penalty clause: Late fees apply") {
		t.Errorf("context missing risk line: %q", intel.context_)
	}

	if len(result.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(result.Sources))
	}
	if result.Sources[0].Type != knowledge.TypeObligation {
		t.Errorf("first source type = %s", result.Sources[0].Type)
	}
	if result.Sources[1].RiskLevel == nil || *result.Sources[1].RiskLevel != knowledge.RiskHigh {
		t.Errorf("risk source level = %v", result.Sources[1].RiskLevel)
	}
}

func TestAskEmptyRetrievalFallsBack(t *testing.T) {
	intel := &fakeIntel{answer: "should not be called"}
	sys := advisor.New(&fakeKnowledge{}, intel, &fakeEmbedder{vec: vector.Vector{1}}, slog.New(slog.DiscardHandler))

	result, err := sys.Ask(context.Background(), uuid.New(), "Anything?", 5)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if result.Answer != advisor.FallbackAnswer {
		t.Errorf("answer = %q, want fallback", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("sources = %d, want 0", len(result.Sources))
	}
	if intel.question != "" {
		t.Error("Answer called despite empty retrieval")
	}
}

func TestAskValidation(t *testing.T) {
	sys := advisor.New(&fakeKnowledge{}, &fakeIntel{}, &fakeEmbedder{vec: vector.Vector{1}}, slog.New(slog.DiscardHandler))

	if _, err := sys.Ask(context.Background(), uuid.Nil, "Q", 5); !errors.Is(err, advisor.ErrInvalidQuery) {
		t.Errorf("missing company error = %v, want ErrInvalidQuery", err)
	}
	if _, err := sys.Ask(context.Background(), uuid.New(), "   ", 5); !errors.Is(err, advisor.ErrInvalidQuery) {
		t.Errorf("blank query error = %v, want ErrInvalidQuery", err)
	}
}

func TestAskDefaultsContextLimit(t *testing.T) {
	know := &fakeKnowledge{}
	sys := advisor.New(know, &fakeIntel{}, &fakeEmbedder{vec: vector.Vector{1}}, slog.New(slog.DiscardHandler))

	if _, err := sys.Ask(context.Background(), uuid.New(), "Q", 0); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if know.k != advisor.DefaultContextLimit {
		t.Errorf("search k = %d, want %d", know.k, advisor.DefaultContextLimit)
	}
}

func TestAskEmbedFailure(t *testing.T) {
	wantErr := errors.New("embedder offline")
	sys := advisor.New(&fakeKnowledge{}, &fakeIntel{}, &fakeEmbedder{err: wantErr}, slog.New(slog.DiscardHandler))

	if _, err := sys.Ask(context.Background(), uuid.New(), "Q", 5); !errors.Is(err, wantErr) {
		t.Errorf("Ask() error = %v, want %v", err, wantErr)
	}
}
