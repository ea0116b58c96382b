package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/pagination"
	"github.com/arboretica/lore/pkg/vector"
)

// System defines the public contract for document domain operations.
// List and Find are tenant-scoped; the remaining mutators are used by
// the ingestion pipeline and scanner, which operate across tenants.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		companyID uuid.UUID,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Patch(ctx context.Context, id uuid.UUID, cmd PatchCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Pipeline status transitions, enforced forward-only.
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// Pipeline artifact writes.
	SaveText(ctx context.Context, id uuid.UUID, text string) error
	SaveClassification(ctx context.Context, id uuid.UUID, documentType string) error
	SaveSummary(ctx context.Context, id uuid.UUID, summary string) error
	SaveEmbedding(ctx context.Context, id uuid.UUID, vec vector.Vector, version int) error

	// ListByType returns processed documents of the given type across
	// all tenants, used by the scheduled scanners.
	ListByType(ctx context.Context, documentType string) ([]Document, error)
}
