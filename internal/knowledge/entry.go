// Package knowledge implements the extracted-knowledge domain: the
// tenant-scoped entries the ingestion pipeline derives from documents,
// and cosine-distance retrieval over their embeddings.
package knowledge

import (
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/repository"
	"github.com/arboretica/lore/pkg/vector"
)

// Knowledge entry types.
const (
	TypeObligation     = "obligation"
	TypeDeadline       = "deadline"
	TypeRisk           = "risk"
	TypeMetric         = "metric"
	TypeRecommendation = "recommendation"
	TypeInsight        = "insight"
)

// Risk levels carried by risk-type entries.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// ValidType reports whether t is a recognized knowledge type.
func ValidType(t string) bool {
	switch t {
	case TypeObligation, TypeDeadline, TypeRisk, TypeMetric,
		TypeRecommendation, TypeInsight:
		return true
	}
	return false
}

// ValidRiskLevel reports whether level is a recognized risk level.
func ValidRiskLevel(level string) bool {
	switch level {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Entry represents one extracted finding tied to a company and,
// usually, to the document it came from.
type Entry struct {
	ID               uuid.UUID          `json:"id"`
	CompanyID        uuid.UUID          `json:"company_id"`
	DocumentID       *uuid.UUID         `json:"document_id"`
	KnowledgeType    string             `json:"knowledge_type"`
	Title            string             `json:"title"`
	Content          string             `json:"content"`
	RiskLevel        *string            `json:"risk_level"`
	Deadline         *time.Time         `json:"deadline"`
	Metadata         repository.Map     `json:"metadata"`
	Tags             repository.Strings `json:"tags"`
	Embedding        vector.Vector      `json:"-"`
	EmbeddingVersion *int               `json:"embedding_version,omitempty"`
	IsActive         bool               `json:"is_active"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Match pairs an entry with its cosine distance from a query vector.
type Match struct {
	Entry    Entry   `json:"entry"`
	Distance float64 `json:"distance"`
}
