package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/internal/documents"
	"github.com/arboretica/lore/internal/knowledge"
)

const (
	upcomingWindow = 30 * 24 * time.Hour
	recentWindow   = 7 * 24 * time.Hour
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an analytics repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "analytics"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Overview(ctx context.Context, companyID, userID uuid.UUID) (*Overview, error) {
	totalDocs, err := r.count(ctx,
		"SELECT count(*) FROM documents WHERE company_id = $1", companyID)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	processedDocs, err := r.count(ctx,
		"SELECT count(*) FROM documents WHERE company_id = $1 AND status = $2",
		companyID, documents.StatusProcessed)
	if err != nil {
		return nil, fmt.Errorf("count processed documents: %w", err)
	}

	entries, err := r.count(ctx,
		"SELECT count(*) FROM knowledge_entries WHERE company_id = $1", companyID)
	if err != nil {
		return nil, fmt.Errorf("count knowledge entries: %w", err)
	}

	unread, err := r.count(ctx,
		"SELECT count(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE", userID)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	overview := NewOverview(totalDocs, processedDocs, entries, unread)
	return &overview, nil
}

func (r *repo) ComplianceScore(ctx context.Context, companyID uuid.UUID) (*ComplianceReport, error) {
	obligations, err := r.count(ctx,
		"SELECT count(*) FROM knowledge_entries WHERE company_id = $1 AND knowledge_type = $2",
		companyID, knowledge.TypeObligation)
	if err != nil {
		return nil, fmt.Errorf("count obligations: %w", err)
	}

	now := time.Now().UTC()
	upcoming, err := r.count(ctx,
		"SELECT count(*) FROM knowledge_entries WHERE company_id = $1 AND knowledge_type = $2 AND deadline >= $3 AND deadline <= $4",
		companyID, knowledge.TypeDeadline, now, now.Add(upcomingWindow))
	if err != nil {
		return nil, fmt.Errorf("count upcoming deadlines: %w", err)
	}

	overdue, err := r.count(ctx,
		"SELECT count(*) FROM knowledge_entries WHERE company_id = $1 AND knowledge_type = $2 AND deadline < $3",
		companyID, knowledge.TypeDeadline, now)
	if err != nil {
		return nil, fmt.Errorf("count overdue deadlines: %w", err)
	}

	report := NewComplianceReport(obligations, upcoming, overdue)
	return &report, nil
}

func (r *repo) RiskSummary(ctx context.Context, companyID uuid.UUID) (*RiskSummary, error) {
	byLevel, err := r.grouped(ctx,
		"SELECT risk_level, count(*) FROM knowledge_entries WHERE company_id = $1 AND knowledge_type = $2 AND risk_level IS NOT NULL GROUP BY risk_level",
		companyID, knowledge.TypeRisk)
	if err != nil {
		return nil, fmt.Errorf("count risks by level: %w", err)
	}

	summary := NewRiskSummary(byLevel)
	return &summary, nil
}

func (r *repo) DocumentStats(ctx context.Context, companyID uuid.UUID) (*DocumentStats, error) {
	byType, err := r.grouped(ctx,
		"SELECT document_type, count(*) FROM documents WHERE company_id = $1 GROUP BY document_type",
		companyID)
	if err != nil {
		return nil, fmt.Errorf("count documents by type: %w", err)
	}

	recent, err := r.count(ctx,
		"SELECT count(*) FROM documents WHERE company_id = $1 AND created_at >= $2",
		companyID, time.Now().UTC().Add(-recentWindow))
	if err != nil {
		return nil, fmt.Errorf("count recent uploads: %w", err)
	}

	stats := NewDocumentStats(byType, recent)
	return &stats, nil
}

func (r *repo) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repo) grouped(ctx context.Context, q string, args ...any) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
