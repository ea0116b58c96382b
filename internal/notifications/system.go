package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/pagination"
)

// System defines the public contract for notification operations.
type System interface {
	Handler() *Handler

	// Create delivers a notification, returning false when the dedup
	// ledger already holds one for the same user, type, and source.
	Create(ctx context.Context, cmd CreateCommand) (bool, error)

	ListForUser(
		ctx context.Context,
		userID uuid.UUID,
		unreadOnly bool,
		page pagination.PageRequest,
	) (*pagination.PageResult[Notification], error)

	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}
