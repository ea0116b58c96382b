// Package advisor answers natural-language questions grounded in a
// company's extracted knowledge: embed the question, retrieve the
// nearest active entries, and synthesize an answer from them.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/arboretica/lore/internal/intelligence"
	"github.com/arboretica/lore/internal/knowledge"
	"github.com/arboretica/lore/pkg/capability"
)

// FallbackAnswer is returned verbatim when retrieval finds nothing.
const FallbackAnswer = "I don't have enough information to answer this question. Please upload relevant documents first."

// DefaultContextLimit bounds retrieval when the caller does not specify one.
const DefaultContextLimit = 5

// Source identifies one knowledge entry that grounded an answer.
type Source struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	RiskLevel *string   `json:"risk_level"`
}

// Result is the advisor's response to one question.
type Result struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// System answers questions over a company's knowledge base.
type System interface {
	Handler() *Handler
	Ask(ctx context.Context, companyID uuid.UUID, question string, contextLimit int) (*Result, error)
}

type system struct {
	knowledge knowledge.System
	intel     intelligence.System
	embedder  capability.Embedder
	logger    *slog.Logger
}

// New creates an advisor System over the knowledge base and capability
// handles.
func New(
	know knowledge.System,
	intel intelligence.System,
	embedder capability.Embedder,
	logger *slog.Logger,
) System {
	return &system{
		knowledge: know,
		intel:     intel,
		embedder:  embedder,
		logger:    logger.With("system", "advisor"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Ask embeds the question, retrieves at most contextLimit entries from
// the company's knowledge base, and answers grounded in them. An empty
// retrieval yields the fixed fallback answer with no sources.
func (s *system) Ask(ctx context.Context, companyID uuid.UUID, question string, contextLimit int) (*Result, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("%w: company id is required", ErrInvalidQuery)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidQuery)
	}
	if contextLimit < 1 {
		contextLimit = DefaultContextLimit
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := s.knowledge.Search(ctx, companyID, queryVec, contextLimit)
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w", err)
	}

	if len(matches) == 0 {
		return &Result{
			Query:   question,
			Answer:  FallbackAnswer,
			Sources: []Source{},
		}, nil
	}

	lines := make([]string, len(matches))
	sources := make([]Source, len(matches))
	for i, m := range matches {
		lines[i] = fmt.Sprintf("[%s] %s: %s", m.Entry.KnowledgeType, m.Entry.Title, m.Entry.Content)
		sources[i] = Source{
			ID:        m.Entry.ID,
			Title:     m.Entry.Title,
			Type:      m.Entry.KnowledgeType,
			RiskLevel: m.Entry.RiskLevel,
		}
	}

	answer, err := s.intel.Answer(ctx, question, strings.Join(lines, "\n\n"))
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	s.logger.Info("question answered",
		"company_id", companyID,
		"sources", len(sources),
	)

	return &Result{
		Query:   question,
		Answer:  answer,
		Sources: sources,
	}, nil
}
