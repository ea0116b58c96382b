package notifications

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/pagination"
	"github.com/arboretica/lore/pkg/query"
	"github.com/arboretica/lore/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a notification repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "notifications"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

// Create inserts a notification. When SourceID is set, the partial
// unique index on (user_id, notification_type, source_id) makes repeat
// deliveries no-ops; the bool reports whether a row was written.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (bool, error) {
	if !ValidType(cmd.NotificationType) {
		return false, fmt.Errorf("%w: notification type %q", ErrInvalidRequest, cmd.NotificationType)
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return false, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}

	q := `
		INSERT INTO notifications(id, user_id, notification_type, title, message, source_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, notification_type, source_id) WHERE source_id IS NOT NULL
		DO NOTHING`

	result, err := r.db.ExecContext(ctx, q,
		uuid.New(),
		cmd.UserID,
		cmd.NotificationType,
		cmd.Title,
		cmd.Message,
		cmd.SourceID,
	)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if rows > 0 {
		r.logger.Info("notification created",
			"user_id", cmd.UserID,
			"type", cmd.NotificationType,
		)
	}
	return rows > 0, nil
}

func (r *repo) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	page pagination.PageRequest,
) (*pagination.PageResult[Notification], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID)

	if unreadOnly {
		unread := false
		qb.WhereEquals("IsRead", &unread)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}

	result := pagination.NewPageResult(rows, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) MarkRead(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE notifications SET is_read = TRUE, read_at = now() WHERE id = $1 AND is_read = FALSE",
		id,
	)
	if err == nil {
		return nil
	}

	// Zero rows: missing or already read. Already read is fine.
	if mapped := repository.MapError(err, ErrNotFound, err); mapped == ErrNotFound {
		var exists bool
		checkErr := r.db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1)", id,
		).Scan(&exists)
		if checkErr != nil {
			return checkErr
		}
		if exists {
			return nil
		}
		return ErrNotFound
	}
	return err
}

func (r *repo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE, read_at = now() WHERE user_id = $1 AND is_read = FALSE",
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
