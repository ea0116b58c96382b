package knowledge

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/pagination"
	"github.com/arboretica/lore/pkg/vector"
)

// System defines the public contract for knowledge domain operations.
// List, ListByDocument, and Search are tenant-scoped; DeadlinesWithin
// serves the scheduled scanners across tenants.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		companyID uuid.UUID,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Entry], error)

	Find(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Entry, error)

	// Upsert inserts or refreshes an entry under its caller-supplied
	// deterministic ID, reactivating it if previously deactivated.
	Upsert(ctx context.Context, entry Entry) error

	// Search ranks the company's active entries with a current-version
	// vector by ascending cosine distance from query, returning at
	// most k matches. k must be positive.
	Search(ctx context.Context, companyID uuid.UUID, query vector.Vector, k int) ([]Match, error)

	// DeadlinesWithin returns active deadline entries whose deadline
	// falls in [from, to], across all tenants.
	DeadlinesWithin(ctx context.Context, from, to time.Time) ([]Entry, error)

	Deactivate(ctx context.Context, id uuid.UUID) error
}
