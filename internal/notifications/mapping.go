package notifications

import (
	"github.com/arboretica/lore/pkg/query"
	"github.com/arboretica/lore/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "notifications", "n").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("notification_type", "NotificationType").
	Project("title", "Title").
	Project("message", "Message").
	Project("source_id", "SourceID").
	Project("is_read", "IsRead").
	Project("created_at", "CreatedAt").
	Project("read_at", "ReadAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

func scanNotification(s repository.Scanner) (Notification, error) {
	var n Notification
	err := s.Scan(
		&n.ID,
		&n.UserID,
		&n.NotificationType,
		&n.Title,
		&n.Message,
		&n.SourceID,
		&n.IsRead,
		&n.CreatedAt,
		&n.ReadAt,
	)
	return n, err
}
