package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/pagination"
	"github.com/arboretica/lore/pkg/query"
	"github.com/arboretica/lore/pkg/repository"
	"github.com/arboretica/lore/pkg/vector"
)

type repo struct {
	db               *sql.DB
	logger           *slog.Logger
	pagination       pagination.Config
	embeddingVersion int
}

// New creates a knowledge repository implementing the System interface.
// embeddingVersion is the current vector generation; Search only ranks
// entries stamped with it.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config, embeddingVersion int) System {
	return &repo{
		db:               db,
		logger:           logger.With("system", "knowledge"),
		pagination:       pagination,
		embeddingVersion: embeddingVersion,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	companyID uuid.UUID,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("CompanyID", companyID).
		WhereSearch(page.Search, "Title", "Content")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count knowledge entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query knowledge entries: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Entry, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Entry, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("DocumentID", documentID).
		Build()

	entries, err := repository.QueryMany(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query knowledge entries by document: %w", err)
	}
	return entries, nil
}

// Upsert writes an entry under its caller-supplied ID. Re-running a
// document's extraction produces the same IDs, so replays refresh rows
// instead of duplicating them.
func (r *repo) Upsert(ctx context.Context, entry Entry) error {
	if !ValidType(entry.KnowledgeType) {
		return fmt.Errorf("%w: knowledge type %q", ErrInvalidRequest, entry.KnowledgeType)
	}
	if entry.RiskLevel != nil && !ValidRiskLevel(*entry.RiskLevel) {
		return fmt.Errorf("%w: risk level %q", ErrInvalidRequest, *entry.RiskLevel)
	}

	q := `
		INSERT INTO knowledge_entries(id, company_id, document_id, knowledge_type, title, content, risk_level, deadline, metadata, tags, embedding, embedding_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			risk_level = EXCLUDED.risk_level,
			deadline = EXCLUDED.deadline,
			metadata = EXCLUDED.metadata,
			tags = EXCLUDED.tags,
			embedding = EXCLUDED.embedding,
			embedding_version = EXCLUDED.embedding_version,
			is_active = TRUE,
			updated_at = now()`

	_, err := r.db.ExecContext(ctx, q,
		entry.ID,
		entry.CompanyID,
		entry.DocumentID,
		entry.KnowledgeType,
		entry.Title,
		entry.Content,
		entry.RiskLevel,
		entry.Deadline,
		entry.Metadata,
		entry.Tags,
		entry.Embedding,
		entry.EmbeddingVersion,
	)
	if err != nil {
		return fmt.Errorf("upsert knowledge entry: %w", err)
	}

	return nil
}

func (r *repo) Search(ctx context.Context, companyID uuid.UUID, queryVec vector.Vector, k int) ([]Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive", ErrInvalidRequest)
	}

	active := true
	q, args := query.
		NewBuilder(projection).
		WhereEquals("CompanyID", companyID).
		WhereEquals("IsActive", &active).
		WhereNotNull("Embedding").
		WhereEquals("EmbeddingVersion", r.embeddingVersion).
		Build()

	entries, err := repository.QueryMany(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("load search candidates: %w", err)
	}

	candidates := make([]vector.Candidate[Entry], 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, vector.Candidate[Entry]{Item: e, Vector: e.Embedding})
	}

	ranked := vector.Nearest(queryVec, candidates, k)

	matches := make([]Match, len(ranked))
	for i, rk := range ranked {
		matches[i] = Match{Entry: rk.Item, Distance: rk.Distance}
	}
	return matches, nil
}

func (r *repo) DeadlinesWithin(ctx context.Context, from, to time.Time) ([]Entry, error) {
	deadline := TypeDeadline
	active := true
	q, args := query.
		NewBuilder(projection, query.SortField{Field: "Deadline"}).
		WhereEquals("KnowledgeType", &deadline).
		WhereEquals("IsActive", &active).
		WhereBetween("Deadline", from, to).
		Build()

	entries, err := repository.QueryMany(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query upcoming deadlines: %w", err)
	}
	return entries, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE knowledge_entries SET is_active = FALSE, updated_at = now() WHERE id = $1",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("knowledge entry deactivated", "id", id)
	return nil
}
