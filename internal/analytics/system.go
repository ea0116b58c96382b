package analytics

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for analytics reports.
type System interface {
	Handler() *Handler

	// Overview reports company-wide processing counts plus the unread
	// notification count of the requesting user.
	Overview(ctx context.Context, companyID, userID uuid.UUID) (*Overview, error)

	ComplianceScore(ctx context.Context, companyID uuid.UUID) (*ComplianceReport, error)
	RiskSummary(ctx context.Context, companyID uuid.UUID) (*RiskSummary, error)
	DocumentStats(ctx context.Context, companyID uuid.UUID) (*DocumentStats, error)
}
