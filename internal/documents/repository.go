package documents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/pagination"
	"github.com/arboretica/lore/pkg/query"
	"github.com/arboretica/lore/pkg/queue"
	"github.com/arboretica/lore/pkg/repository"
	"github.com/arboretica/lore/pkg/storage"
	"github.com/arboretica/lore/pkg/vector"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	queue      queue.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	q queue.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		queue:      q,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	companyID uuid.UUID,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("CompanyID", companyID).
		WhereSearch(page.Search, "Filename", "OriginalFilename", "Summary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

// Create registers the document row and enqueues its bytes for
// ingestion. The blob itself is written by the pipeline, so a row can
// exist briefly without its blob; the status column tells the story.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	id := uuid.New()
	safeName := sanitizeFilename(cmd.Filename)
	key := buildStorageKey(cmd.CompanyID, id, safeName)

	version := 1
	if cmd.ParentID != nil {
		parent, err := r.Find(ctx, *cmd.ParentID)
		if err != nil {
			return nil, fmt.Errorf("resolve parent document: %w", err)
		}
		if parent.CompanyID != cmd.CompanyID {
			return nil, ErrNotFound
		}
		version = parent.Version + 1
	}

	q := `
		INSERT INTO documents(id, company_id, filename, original_filename, storage_key, size_bytes, mime_type, version, parent_id, metadata, tags, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, company_id, filename, original_filename, storage_key, size_bytes, mime_type, document_type, status, version, parent_id, extracted_text, summary, metadata, tags, embedding, embedding_version, uploaded_by, created_at, updated_at, processed_at`

	insertArgs := []any{
		id,
		cmd.CompanyID,
		safeName,
		cmd.Filename,
		key,
		int64(len(cmd.Data)),
		cmd.MimeType,
		version,
		cmd.ParentID,
		cmd.Metadata,
		cmd.Tags,
		cmd.UploadedBy,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanDocument)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	job := queue.Job{
		DocumentID:  d.ID,
		Data:        cmd.Data,
		ContentType: cmd.MimeType,
	}
	if err := r.queue.Enqueue(ctx, job); err != nil {
		if failErr := r.MarkFailed(ctx, d.ID); failErr != nil {
			r.logger.Warn("mark failed after enqueue error", "id", d.ID, "error", failErr)
		}
		return nil, fmt.Errorf("enqueue ingestion job: %w", err)
	}

	r.logger.Info("document created",
		"id", d.ID,
		"company_id", d.CompanyID,
		"filename", d.OriginalFilename,
	)
	return &d, nil
}

func (r *repo) Patch(ctx context.Context, id uuid.UUID, cmd PatchCommand) (*Document, error) {
	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Tags != nil {
		current.Tags = *cmd.Tags
	}
	if cmd.Metadata != nil {
		current.Metadata = *cmd.Metadata
	}

	err = repository.ExecExpectOne(ctx, r.db,
		"UPDATE documents SET tags = $2, metadata = $3, updated_at = now() WHERE id = $1",
		id, current.Tags, current.Metadata,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return r.Find(ctx, id)
}

// Delete removes a document row, cascading its knowledge entries, then
// deletes the blob best-effort. Versions referencing this row as parent
// are kept; their parent_id is cleared by the database.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	err = repository.ExecExpectOne(ctx, r.db, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, doc.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", doc.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

// MarkProcessing claims a document for a pipeline run. Re-entry from
// processing is allowed: a crash leaves the row in processing, and the
// queue's redelivery is what revisits it. Only processed is terminal.
func (r *repo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE documents SET status = $2, updated_at = now() WHERE id = $1 AND status <> $3",
		id, StatusProcessing, StatusProcessed,
	)
	return r.mapTransition(ctx, id, StatusProcessing, err)
}

// MarkFailed moves a document that never finished processing into the
// failed state. Processed documents are terminal.
func (r *repo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, StatusFailed, StatusProcessing, StatusUploaded)
}

func (r *repo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE documents SET status = $2, processed_at = now(), updated_at = now() WHERE id = $1 AND status = $3",
		id, StatusProcessed, StatusProcessing,
	)
	return r.mapTransition(ctx, id, StatusProcessed, err)
}

func (r *repo) transition(ctx context.Context, id uuid.UUID, to, from1, from2 string) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE documents SET status = $2, updated_at = now() WHERE id = $1 AND (status = $3 OR status = $4)",
		id, to, from1, from2,
	)
	return r.mapTransition(ctx, id, to, err)
}

func (r *repo) mapTransition(ctx context.Context, id uuid.UUID, to string, err error) error {
	if err == nil {
		return nil
	}
	if mapped := repository.MapError(err, ErrNotFound, ErrDuplicate); mapped != ErrNotFound {
		return mapped
	}

	// Zero rows means either a missing document or a disallowed
	// transition; distinguish for the caller.
	if _, findErr := r.Find(ctx, id); findErr != nil {
		return findErr
	}
	return fmt.Errorf("%w: to %s", ErrInvalidTransition, to)
}

func (r *repo) SaveText(ctx context.Context, id uuid.UUID, text string) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE documents SET extracted_text = $2, updated_at = now() WHERE id = $1",
		id, text,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) SaveClassification(ctx context.Context, id uuid.UUID, documentType string) error {
	if !ValidType(documentType) {
		return fmt.Errorf("%w: document type %q", ErrInvalidFile, documentType)
	}

	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE documents SET document_type = $2, updated_at = now() WHERE id = $1",
		id, documentType,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) SaveSummary(ctx context.Context, id uuid.UUID, summary string) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE documents SET summary = $2, updated_at = now() WHERE id = $1",
		id, summary,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) SaveEmbedding(ctx context.Context, id uuid.UUID, vec vector.Vector, version int) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE documents SET embedding = $2, embedding_version = $3, updated_at = now() WHERE id = $1",
		id, vec, version,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) ListByType(ctx context.Context, documentType string) ([]Document, error) {
	processed := StatusProcessed
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("DocumentType", &documentType).
		WhereEquals("Status", &processed).
		Build()

	docs, err := repository.QueryMany(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents by type: %w", err)
	}
	return docs, nil
}

func buildStorageKey(companyID, id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/%s/%s", companyID, id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
