// Package intelligence turns document text into classifications,
// summaries, structured findings, and grounded answers using the
// generative capability handle.
package intelligence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arboretica/lore/pkg/capability"
	"github.com/arboretica/lore/pkg/formatting"
)

const (
	classifyPreviewLimit = 500
	documentInputLimit   = 4000

	classifyMaxTokens  = 10
	summarizeMaxTokens = 500
	extractMaxTokens   = 1000
	answerMaxTokens    = 500

	classifyTemperature  = 0.1
	summarizeTemperature = 0.3
	extractTemperature   = 0.1
	answerTemperature    = 0.5
)

// System derives knowledge from document text.
type System interface {
	Classify(ctx context.Context, filename, preview string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	ExtractStructured(ctx context.Context, text, docType string) (Extraction, error)
	Answer(ctx context.Context, question, context_ string) (string, error)
}

type system struct {
	completer capability.Completer
	logger    *slog.Logger
}

// NewSystem creates an intelligence System over the given completer.
func NewSystem(completer capability.Completer, logger *slog.Logger) System {
	return &system{
		completer: completer,
		logger:    logger.With("system", "intelligence"),
	}
}

// Classify returns a lowercase document-type label for the given filename
// and content preview. The label is not validated here; callers map
// unknown labels to their fallback.
func (s *system) Classify(ctx context.Context, filename, preview string) (string, error) {
	user := fmt.Sprintf(
		"Filename: %s\nContent preview: %s\n\nClassify this document.",
		filename, truncate(preview, classifyPreviewLimit),
	)

	label, err := s.completer.Complete(ctx, classifyInstruction, user, capability.CompleteOptions{
		MaxTokens:   classifyMaxTokens,
		Temperature: classifyTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}

	return strings.ToLower(strings.TrimSpace(label)), nil
}

// Summarize produces a concise summary of the document text.
func (s *system) Summarize(ctx context.Context, text string) (string, error) {
	user := fmt.Sprintf("Summarize this document:\n\n%s", truncate(text, documentInputLimit))

	summary, err := s.completer.Complete(ctx, summarizeInstruction, user, capability.CompleteOptions{
		MaxTokens:   summarizeMaxTokens,
		Temperature: summarizeTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	return summary, nil
}

// ExtractStructured pulls obligations, deadlines, risks, and metrics out
// of the document text. A response that cannot be parsed as JSON yields
// the empty Extraction, not an error: a confused model is treated the
// same as a document with nothing to extract.
func (s *system) ExtractStructured(ctx context.Context, text, docType string) (Extraction, error) {
	user := fmt.Sprintf(extractTemplate, docType, truncate(text, documentInputLimit))

	content, err := s.completer.Complete(ctx, extractInstruction, user, capability.CompleteOptions{
		MaxTokens:   extractMaxTokens,
		Temperature: extractTemperature,
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("extract structured: %w", err)
	}

	extraction, err := formatting.Parse[Extraction](content)
	if err != nil {
		s.logger.Warn("discarding malformed extraction output",
			"document_type", docType,
			"error", err,
		)
		return Extraction{}, nil
	}

	return extraction, nil
}

// Answer synthesizes a response to question grounded in the supplied
// retrieval context.
func (s *system) Answer(ctx context.Context, question, context_ string) (string, error) {
	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context_, question)

	answer, err := s.completer.Complete(ctx, answerInstruction, user, capability.CompleteOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("answer: %w", err)
	}

	return answer, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
