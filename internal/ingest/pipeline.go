// Package ingest runs the document processing pipeline: blob storage,
// text extraction, classification, summarization, embedding, and
// knowledge persistence, driven by jobs from the durable queue.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/arboretica/lore/internal/documents"
	"github.com/arboretica/lore/internal/extraction"
	"github.com/arboretica/lore/internal/intelligence"
	"github.com/arboretica/lore/internal/knowledge"
	"github.com/arboretica/lore/pkg/capability"
	"github.com/arboretica/lore/pkg/queue"
	"github.com/arboretica/lore/pkg/retry"
	"github.com/arboretica/lore/pkg/storage"
	"github.com/arboretica/lore/pkg/vector"
)

const embedInputLimit = 8000

// Pipeline processes one ingestion job end to end. Runs for the same
// document are collapsed through singleflight, so at most one is active
// in-process at a time.
type Pipeline struct {
	documents documents.System
	knowledge knowledge.System
	intel     intelligence.System
	embedder  capability.Embedder
	storage   storage.System
	retry     retry.Config
	version   int
	logger    *slog.Logger

	group singleflight.Group
}

// NewPipeline assembles a Pipeline. version stamps every vector the
// pipeline writes.
func NewPipeline(
	docs documents.System,
	know knowledge.System,
	intel intelligence.System,
	embedder capability.Embedder,
	store storage.System,
	retryCfg retry.Config,
	version int,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		documents: docs,
		knowledge: know,
		intel:     intel,
		embedder:  embedder,
		storage:   store,
		retry:     retryCfg,
		version:   version,
		logger:    logger.With("system", "ingest"),
	}
}

// Process runs the pipeline for one job. A failed run marks the
// document failed and returns; the job is consumed either way. Replays
// of an already processed document are dropped; a document stranded in
// processing by a crash is re-claimed when the queue redelivers its
// job, which the deterministic entry IDs and overwrite-safe enrichment
// writes make safe to re-run.
func (p *Pipeline) Process(ctx context.Context, job queue.Job) {
	_, err, _ := p.group.Do(job.DocumentID.String(), func() (any, error) {
		return nil, p.run(ctx, job)
	})
	if err != nil {
		p.logger.Error("document processing failed",
			"document_id", job.DocumentID,
			"error", err,
		)
	}
}

func (p *Pipeline) run(ctx context.Context, job queue.Job) error {
	doc, err := p.documents.Find(ctx, job.DocumentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			p.logger.Warn("dropping job for missing document", "document_id", job.DocumentID)
			return nil
		}
		return fmt.Errorf("load document: %w", err)
	}

	if err := p.documents.MarkProcessing(ctx, doc.ID); err != nil {
		if errors.Is(err, documents.ErrInvalidTransition) {
			p.logger.Warn("dropping job for already processed document",
				"document_id", doc.ID,
				"status", doc.Status,
			)
			return nil
		}
		return fmt.Errorf("mark processing: %w", err)
	}

	if err := p.ingest(ctx, doc, job); err != nil {
		if failErr := p.documents.MarkFailed(ctx, doc.ID); failErr != nil {
			p.logger.Error("mark failed", "document_id", doc.ID, "error", failErr)
		}
		return err
	}

	if err := p.documents.MarkProcessed(ctx, doc.ID); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	p.logger.Info("document processed", "document_id", doc.ID)
	return nil
}

func (p *Pipeline) ingest(ctx context.Context, doc *documents.Document, job queue.Job) error {
	// Blob write is a durability obligation: the row must never
	// outlive a run without its bytes in storage.
	_, err := retry.Do(ctx, p.retry, func() (struct{}, error) {
		return struct{}{}, p.storage.Upload(ctx, doc.StorageKey, bytes.NewReader(job.Data), job.ContentType)
	})
	if err != nil {
		return fmt.Errorf("store document blob: %w", err)
	}

	text, ok := extraction.Extract(job.Data, job.ContentType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoText, job.ContentType)
	}

	if err := p.documents.SaveText(ctx, doc.ID, text); err != nil {
		return fmt.Errorf("save extracted text: %w", err)
	}

	docType := p.classify(ctx, doc, text)
	p.summarize(ctx, doc, text)

	docVec, err := p.embed(ctx, truncate(text, embedInputLimit))
	if err != nil {
		return fmt.Errorf("embed document text: %w", err)
	}
	if err := p.documents.SaveEmbedding(ctx, doc.ID, docVec, p.version); err != nil {
		return fmt.Errorf("save document embedding: %w", err)
	}

	ext, err := p.intel.ExtractStructured(ctx, text, docType)
	if err != nil {
		return fmt.Errorf("extract knowledge: %w", err)
	}

	return p.persistExtraction(ctx, doc, ext)
}

// classify asks for a document type and saves it when the label is
// recognized. Failures leave the existing type in place.
func (p *Pipeline) classify(ctx context.Context, doc *documents.Document, text string) string {
	label, err := p.intel.Classify(ctx, doc.OriginalFilename, text)
	if err != nil {
		p.logger.Warn("classification failed", "document_id", doc.ID, "error", err)
		return doc.DocumentType
	}

	if !documents.ValidType(label) {
		p.logger.Warn("discarding unrecognized classification label",
			"document_id", doc.ID,
			"label", label,
		)
		return doc.DocumentType
	}

	if err := p.documents.SaveClassification(ctx, doc.ID, label); err != nil {
		p.logger.Warn("save classification failed", "document_id", doc.ID, "error", err)
		return doc.DocumentType
	}
	return label
}

// summarize is best-effort: a document without a summary is still
// processed.
func (p *Pipeline) summarize(ctx context.Context, doc *documents.Document, text string) {
	summary, err := p.intel.Summarize(ctx, text)
	if err != nil {
		p.logger.Warn("summarization failed", "document_id", doc.ID, "error", err)
		return
	}
	if err := p.documents.SaveSummary(ctx, doc.ID, summary); err != nil {
		p.logger.Warn("save summary failed", "document_id", doc.ID, "error", err)
	}
}

func (p *Pipeline) embed(ctx context.Context, text string) (vector.Vector, error) {
	return retry.Do(ctx, p.retry, func() (vector.Vector, error) {
		vec, err := p.embedder.Embed(ctx, text)
		if err != nil {
			// Input and dimension faults are deterministic; retrying
			// the same call cannot fix them.
			if errors.Is(err, capability.ErrEmptyInput) || errors.Is(err, capability.ErrWrongDimension) {
				return nil, retry.Permanent(err)
			}
			return nil, err
		}
		return vec, nil
	})
}

func (p *Pipeline) persistExtraction(ctx context.Context, doc *documents.Document, ext intelligence.Extraction) error {
	kinds := []struct {
		knowledgeType string
		items         []intelligence.Item
	}{
		{knowledge.TypeObligation, ext.Obligations},
		{knowledge.TypeDeadline, ext.Deadlines},
		{knowledge.TypeRisk, ext.Risks},
		{knowledge.TypeMetric, ext.Metrics},
	}

	for _, kind := range kinds {
		for i, item := range kind.items {
			entry, err := p.buildEntry(ctx, doc, kind.knowledgeType, i, item)
			if err != nil {
				return err
			}
			if err := p.knowledge.Upsert(ctx, *entry); err != nil {
				return fmt.Errorf("persist %s entry: %w", kind.knowledgeType, err)
			}
		}
	}
	return nil
}

func (p *Pipeline) buildEntry(
	ctx context.Context,
	doc *documents.Document,
	knowledgeType string,
	index int,
	item intelligence.Item,
) (*knowledge.Entry, error) {
	docID := doc.ID
	entry := &knowledge.Entry{
		// Deterministic per document, kind, and position: replays
		// refresh rows instead of duplicating them.
		ID:            uuid.NewSHA1(doc.ID, fmt.Appendf(nil, "%s:%d", knowledgeType, index)),
		CompanyID:     doc.CompanyID,
		DocumentID:    &docID,
		KnowledgeType: knowledgeType,
		Title:         item.Title,
		Content:       item.Content,
	}

	if entry.Title == "" {
		entry.Title = defaultTitle(knowledgeType)
	}

	if knowledgeType == knowledge.TypeRisk {
		level := item.Level
		if level == "" {
			level = knowledge.RiskMedium
		}
		if !knowledge.ValidRiskLevel(level) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRiskLevel, item.Level)
		}
		entry.RiskLevel = &level
	}

	if knowledgeType == knowledge.TypeDeadline {
		entry.Deadline = parseDeadline(item.Date)
	}

	if item.Content != "" {
		vec, err := p.embed(ctx, item.Content)
		if err != nil {
			return nil, fmt.Errorf("embed %s entry: %w", knowledgeType, err)
		}
		entry.Embedding = vec
		version := p.version
		entry.EmbeddingVersion = &version
	}

	return entry, nil
}

func defaultTitle(knowledgeType string) string {
	switch knowledgeType {
	case knowledge.TypeObligation:
		return "Obligation"
	case knowledge.TypeDeadline:
		return "Deadline"
	case knowledge.TypeRisk:
		return "Risk"
	case knowledge.TypeMetric:
		return "Metric"
	}
	return "Entry"
}

// parseDeadline is best-effort: an unparseable date leaves the entry
// without a deadline rather than failing the run.
func parseDeadline(date string) *time.Time {
	if date == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, date); err == nil {
			return &t
		}
	}
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
