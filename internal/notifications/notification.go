// Package notifications implements per-user notifications with a dedup
// ledger: a notification that names its source is delivered to a given
// user at most once.
package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	TypeDeadline         = "deadline"
	TypeExpiringContract = "expiring_contract"
	TypeMissingDocument  = "missing_document"
	TypeRiskAlert        = "risk_alert"
	TypeCompliance       = "compliance"
	TypeSystem           = "system"
)

// ValidType reports whether t is a recognized notification type.
func ValidType(t string) bool {
	switch t {
	case TypeDeadline, TypeExpiringContract, TypeMissingDocument,
		TypeRiskAlert, TypeCompliance, TypeSystem:
		return true
	}
	return false
}

// Notification represents a message delivered to one user.
type Notification struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	NotificationType string     `json:"notification_type"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	SourceID         *uuid.UUID `json:"source_id"`
	IsRead           bool       `json:"is_read"`
	CreatedAt        time.Time  `json:"created_at"`
	ReadAt           *time.Time `json:"read_at"`
}

// CreateCommand carries the data needed to deliver a notification.
// SourceID identifies what the notification is about (a knowledge entry,
// a document); when set, repeated creates for the same user, type, and
// source are silently dropped.
type CreateCommand struct {
	UserID           uuid.UUID
	NotificationType string
	Title            string
	Message          string
	SourceID         *uuid.UUID
}
