package ingest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/internal/documents"
	"github.com/arboretica/lore/internal/ingest"
	"github.com/arboretica/lore/internal/intelligence"
	"github.com/arboretica/lore/internal/knowledge"
	"github.com/arboretica/lore/pkg/capability"
	"github.com/arboretica/lore/pkg/lifecycle"
	"github.com/arboretica/lore/pkg/pagination"
	"github.com/arboretica/lore/pkg/queue"
	"github.com/arboretica/lore/pkg/retry"
	"github.com/arboretica/lore/pkg/vector"
)

type fakeDocuments struct {
	docs map[uuid.UUID]*documents.Document

	processing      []uuid.UUID
	processed       []uuid.UUID
	failed          []uuid.UUID
	savedText       map[uuid.UUID]string
	classifications map[uuid.UUID]string
	summaries       map[uuid.UUID]string
	embeddings      map[uuid.UUID]vector.Vector
}

func newFakeDocuments(docs ...*documents.Document) *fakeDocuments {
	f := &fakeDocuments{
		docs:            make(map[uuid.UUID]*documents.Document),
		savedText:       make(map[uuid.UUID]string),
		classifications: make(map[uuid.UUID]string),
		summaries:       make(map[uuid.UUID]string),
		embeddings:      make(map[uuid.UUID]vector.Vector),
	}
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return f
}

func (f *fakeDocuments) Handler(int64) *documents.Handler { return nil }

func (f *fakeDocuments) List(context.Context, uuid.UUID, pagination.PageRequest, documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return nil, nil
}

func (f *fakeDocuments) Find(_ context.Context, id uuid.UUID) (*documents.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (f *fakeDocuments) Create(context.Context, documents.CreateCommand) (*documents.Document, error) {
	return nil, nil
}

func (f *fakeDocuments) Patch(context.Context, uuid.UUID, documents.PatchCommand) (*documents.Document, error) {
	return nil, nil
}

func (f *fakeDocuments) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeDocuments) MarkProcessing(_ context.Context, id uuid.UUID) error {
	d := f.docs[id]
	if d.Status == documents.StatusProcessed {
		return documents.ErrInvalidTransition
	}
	d.Status = documents.StatusProcessing
	f.processing = append(f.processing, id)
	return nil
}

func (f *fakeDocuments) MarkProcessed(_ context.Context, id uuid.UUID) error {
	f.docs[id].Status = documents.StatusProcessed
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeDocuments) MarkFailed(_ context.Context, id uuid.UUID) error {
	f.docs[id].Status = documents.StatusFailed
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeDocuments) SaveText(_ context.Context, id uuid.UUID, text string) error {
	f.savedText[id] = text
	return nil
}

func (f *fakeDocuments) SaveClassification(_ context.Context, id uuid.UUID, documentType string) error {
	f.classifications[id] = documentType
	return nil
}

func (f *fakeDocuments) SaveSummary(_ context.Context, id uuid.UUID, summary string) error {
	f.summaries[id] = summary
	return nil
}

func (f *fakeDocuments) SaveEmbedding(_ context.Context, id uuid.UUID, vec vector.Vector, _ int) error {
	f.embeddings[id] = vec
	return nil
}

func (f *fakeDocuments) ListByType(context.Context, string) ([]documents.Document, error) {
	return nil, nil
}

type fakeKnowledge struct {
	knowledge.System
	upserts []knowledge.Entry
}

func (f *fakeKnowledge) Upsert(_ context.Context, entry knowledge.Entry) error {
	f.upserts = append(f.upserts, entry)
	return nil
}

type fakeIntel struct {
	label      string
	labelErr   error
	summary    string
	summaryErr error
	extraction intelligence.Extraction
	extractErr error
}

func (f *fakeIntel) Classify(context.Context, string, string) (string, error) {
	return f.label, f.labelErr
}

func (f *fakeIntel) Summarize(context.Context, string) (string, error) {
	return f.summary, f.summaryErr
}

func (f *fakeIntel) ExtractStructured(context.Context, string, string) (intelligence.Extraction, error) {
	return f.extraction, f.extractErr
}

func (f *fakeIntel) Answer(context.Context, string, string) (string, error) {
	return "", nil
}

type fakeEmbedder struct {
	vec   vector.Vector
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(context.Context, string) (vector.Vector, error) {
	f.calls++
	return f.vec, f.err
}

func (f *fakeEmbedder) Dimension() int { return len(f.vec) }

type fakeStorage struct {
	uploads map[string][]byte
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Upload(_ context.Context, key string, reader io.Reader, _ string) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeStorage) Download(context.Context, string) (io.ReadCloser, error) { return nil, nil }
func (f *fakeStorage) Delete(context.Context, string) error                    { return nil }
func (f *fakeStorage) Exists(context.Context, string) (bool, error)            { return false, nil }

func testDocument() *documents.Document {
	return &documents.Document{
		ID:               uuid.New(),
		CompanyID:        uuid.New(),
		OriginalFilename: "agreement.txt",
		StorageKey:       "documents/key",
		DocumentType:     documents.TypeOther,
		Status:           documents.StatusUploaded,
	}
}

func newPipeline(
	docs *fakeDocuments,
	know *fakeKnowledge,
	intel *fakeIntel,
	embedder *fakeEmbedder,
	store *fakeStorage,
) *ingest.Pipeline {
	return ingest.NewPipeline(
		docs, know, intel, embedder, store,
		retry.Config{MaxTries: 1},
		1,
		slog.New(slog.DiscardHandler),
	)
}

func TestProcessHappyPath(t *testing.T) {
	doc := testDocument()
	docs := newFakeDocuments(doc)
	know := &fakeKnowledge{}
	intel := &fakeIntel{
		label:   "contract",
		summary: "A service agreement.",
		extraction: intelligence.Extraction{
			Obligations: []intelligence.Item{{Title: "Report monthly", Content: "Deliver a report"}},
			Deadlines:   []intelligence.Item{{Title: "Renewal", Content: "Renew by date", Date: "2026-10-01"}},
			Risks:       []intelligence.Item{{Title: "Penalty", Content: "Late fees", Level: "high"}},
			Metrics:     []intelligence.Item{{Title: "Value", Content: "EUR 12000"}},
		},
	}
	embedder := &fakeEmbedder{vec: vector.Vector{0.1, 0.2}}
	store := newFakeStorage()

	p := newPipeline(docs, know, intel, embedder, store)
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("agreement text body"),
		ContentType: "text/plain",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusProcessed {
		t.Fatalf("status = %s, want processed", got)
	}
	if _, ok := store.uploads[doc.StorageKey]; !ok {
		t.Error("blob was not uploaded")
	}
	if docs.savedText[doc.ID] != "agreement text body" {
		t.Errorf("saved text = %q", docs.savedText[doc.ID])
	}
	if docs.classifications[doc.ID] != "contract" {
		t.Errorf("classification = %q", docs.classifications[doc.ID])
	}
	if docs.summaries[doc.ID] != "A service agreement." {
		t.Errorf("summary = %q", docs.summaries[doc.ID])
	}
	if len(docs.embeddings[doc.ID]) != 2 {
		t.Errorf("document embedding = %v", docs.embeddings[doc.ID])
	}

	if len(know.upserts) != 4 {
		t.Fatalf("upserts = %d, want 4", len(know.upserts))
	}

	byType := map[string]knowledge.Entry{}
	for _, e := range know.upserts {
		byType[e.KnowledgeType] = e
		if e.CompanyID != doc.CompanyID {
			t.Errorf("entry company = %s, want %s", e.CompanyID, doc.CompanyID)
		}
		if e.DocumentID == nil || *e.DocumentID != doc.ID {
			t.Errorf("entry document id = %v", e.DocumentID)
		}
	}

	risk := byType[knowledge.TypeRisk]
	if risk.RiskLevel == nil || *risk.RiskLevel != knowledge.RiskHigh {
		t.Errorf("risk level = %v", risk.RiskLevel)
	}

	deadline := byType[knowledge.TypeDeadline]
	if deadline.Deadline == nil || deadline.Deadline.Format("2006-01-02") != "2026-10-01" {
		t.Errorf("deadline = %v", deadline.Deadline)
	}
}

func TestProcessReplayProducesSameEntryIDs(t *testing.T) {
	doc := testDocument()
	intel := &fakeIntel{
		label: "contract",
		extraction: intelligence.Extraction{
			Obligations: []intelligence.Item{{Title: "Report", Content: "Deliver"}},
		},
	}
	embedder := &fakeEmbedder{vec: vector.Vector{0.5}}

	run := func() uuid.UUID {
		docs := newFakeDocuments(doc)
		doc.Status = documents.StatusUploaded
		know := &fakeKnowledge{}
		p := newPipeline(docs, know, intel, embedder, newFakeStorage())
		p.Process(context.Background(), queue.Job{
			DocumentID:  doc.ID,
			Data:        []byte("text"),
			ContentType: "text/plain",
		})
		if len(know.upserts) != 1 {
			t.Fatalf("upserts = %d, want 1", len(know.upserts))
		}
		return know.upserts[0].ID
	}

	first := run()
	second := run()
	if first != second {
		t.Errorf("entry IDs differ across replays: %s vs %s", first, second)
	}
}

func TestProcessNoTextFailsDocument(t *testing.T) {
	doc := testDocument()
	docs := newFakeDocuments(doc)
	know := &fakeKnowledge{}

	p := newPipeline(docs, know, &fakeIntel{}, &fakeEmbedder{vec: vector.Vector{1}}, newFakeStorage())
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte{0x01, 0x02},
		ContentType: "application/unknown",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusFailed {
		t.Fatalf("status = %s, want failed", got)
	}
	if len(know.upserts) != 0 {
		t.Errorf("upserts = %d, want 0", len(know.upserts))
	}
}

func TestProcessStoragePutFailureIsFatal(t *testing.T) {
	doc := testDocument()
	docs := newFakeDocuments(doc)
	store := newFakeStorage()
	store.err = errors.New("storage unavailable")

	p := newPipeline(docs, &fakeKnowledge{}, &fakeIntel{}, &fakeEmbedder{vec: vector.Vector{1}}, store)
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusFailed {
		t.Fatalf("status = %s, want failed", got)
	}
	if len(docs.savedText) != 0 {
		t.Error("text saved despite storage failure")
	}
}

func TestProcessBestEffortStepsSwallowed(t *testing.T) {
	doc := testDocument()
	docs := newFakeDocuments(doc)
	intel := &fakeIntel{
		labelErr:   errors.New("provider down"),
		summaryErr: errors.New("provider down"),
	}

	p := newPipeline(docs, &fakeKnowledge{}, intel, &fakeEmbedder{vec: vector.Vector{1}}, newFakeStorage())
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusProcessed {
		t.Fatalf("status = %s, want processed", got)
	}
	if len(docs.classifications) != 0 || len(docs.summaries) != 0 {
		t.Error("classification or summary saved despite provider errors")
	}
}

func TestProcessUnrecognizedLabelKeepsExistingType(t *testing.T) {
	doc := testDocument()
	docs := newFakeDocuments(doc)
	intel := &fakeIntel{label: "novel"}

	p := newPipeline(docs, &fakeKnowledge{}, intel, &fakeEmbedder{vec: vector.Vector{1}}, newFakeStorage())
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusProcessed {
		t.Fatalf("status = %s, want processed", got)
	}
	if len(docs.classifications) != 0 {
		t.Errorf("classification saved for unknown label: %v", docs.classifications)
	}
}

func TestProcessUnknownRiskLevelIsFatal(t *testing.T) {
	doc := testDocument()
	docs := newFakeDocuments(doc)
	know := &fakeKnowledge{}
	intel := &fakeIntel{
		extraction: intelligence.Extraction{
			Risks: []intelligence.Item{{Title: "R", Content: "C", Level: "catastrophic"}},
		},
	}

	p := newPipeline(docs, know, intel, &fakeEmbedder{vec: vector.Vector{1}}, newFakeStorage())
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusFailed {
		t.Fatalf("status = %s, want failed", got)
	}
}

func TestProcessMissingRiskLevelDefaultsMedium(t *testing.T) {
	doc := testDocument()
	docs := newFakeDocuments(doc)
	know := &fakeKnowledge{}
	intel := &fakeIntel{
		extraction: intelligence.Extraction{
			Risks: []intelligence.Item{{Title: "R", Content: "C"}},
		},
	}

	p := newPipeline(docs, know, intel, &fakeEmbedder{vec: vector.Vector{1}}, newFakeStorage())
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if len(know.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(know.upserts))
	}
	if level := know.upserts[0].RiskLevel; level == nil || *level != knowledge.RiskMedium {
		t.Errorf("risk level = %v, want medium", level)
	}
}

func TestProcessEmbedFailureIsFatal(t *testing.T) {
	doc := testDocument()
	docs := newFakeDocuments(doc)

	p := newPipeline(docs, &fakeKnowledge{}, &fakeIntel{},
		&fakeEmbedder{err: errors.New("embed down")}, newFakeStorage())
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusFailed {
		t.Fatalf("status = %s, want failed", got)
	}
}

func TestProcessDimensionFaultNotRetried(t *testing.T) {
	doc := testDocument()
	docs := newFakeDocuments(doc)
	embedder := &fakeEmbedder{err: capability.ErrWrongDimension}

	p := ingest.NewPipeline(
		docs, &fakeKnowledge{}, &fakeIntel{}, embedder, newFakeStorage(),
		retry.Config{MaxTries: 3, InitialInterval: time.Millisecond},
		1,
		slog.New(slog.DiscardHandler),
	)
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusFailed {
		t.Fatalf("status = %s, want failed", got)
	}
	if embedder.calls != 1 {
		t.Errorf("embed calls = %d, want 1 for a deterministic fault", embedder.calls)
	}
}

func TestProcessDropsMissingDocument(t *testing.T) {
	docs := newFakeDocuments()

	p := newPipeline(docs, &fakeKnowledge{}, &fakeIntel{}, &fakeEmbedder{vec: vector.Vector{1}}, newFakeStorage())
	p.Process(context.Background(), queue.Job{
		DocumentID:  uuid.New(),
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if len(docs.failed) != 0 || len(docs.processed) != 0 {
		t.Error("status changed for missing document")
	}
}

// A crash mid-run leaves the document in processing with its job
// unacked; redelivery must re-claim and finish it rather than drop it.
func TestProcessRedeliveryRevisitsProcessingDocument(t *testing.T) {
	doc := testDocument()
	doc.Status = documents.StatusProcessing
	docs := newFakeDocuments(doc)
	know := &fakeKnowledge{}
	intel := &fakeIntel{
		extraction: intelligence.Extraction{
			Obligations: []intelligence.Item{{Title: "Report", Content: "Deliver"}},
		},
	}

	p := newPipeline(docs, know, intel, &fakeEmbedder{vec: vector.Vector{1}}, newFakeStorage())
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusProcessed {
		t.Fatalf("status = %s, want processed after redelivery", got)
	}
	if len(know.upserts) != 1 {
		t.Errorf("upserts = %d, want 1", len(know.upserts))
	}
}

func TestProcessDropsAlreadyProcessed(t *testing.T) {
	doc := testDocument()
	doc.Status = documents.StatusProcessed
	docs := newFakeDocuments(doc)
	know := &fakeKnowledge{}

	p := newPipeline(docs, know, &fakeIntel{}, &fakeEmbedder{vec: vector.Vector{1}}, newFakeStorage())
	p.Process(context.Background(), queue.Job{
		DocumentID:  doc.ID,
		Data:        []byte("text"),
		ContentType: "text/plain",
	})

	if got := docs.docs[doc.ID].Status; got != documents.StatusProcessed {
		t.Fatalf("status = %s, want processed untouched", got)
	}
	if len(know.upserts) != 0 {
		t.Error("entries written for already processed document")
	}
}
