package knowledge

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/query"
	"github.com/arboretica/lore/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "knowledge_entries", "k").
	Project("id", "ID").
	Project("company_id", "CompanyID").
	Project("document_id", "DocumentID").
	Project("knowledge_type", "KnowledgeType").
	Project("title", "Title").
	Project("content", "Content").
	Project("risk_level", "RiskLevel").
	Project("deadline", "Deadline").
	Project("metadata", "Metadata").
	Project("tags", "Tags").
	Project("embedding", "Embedding").
	Project("embedding_version", "EmbeddingVersion").
	Project("is_active", "IsActive").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for knowledge queries.
// Nil fields are ignored.
type Filters struct {
	KnowledgeType *string    `json:"knowledge_type,omitempty"`
	RiskLevel     *string    `json:"risk_level,omitempty"`
	DocumentID    *uuid.UUID `json:"document_id,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("KnowledgeType", f.KnowledgeType).
		WhereEquals("RiskLevel", f.RiskLevel).
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("IsActive", f.IsActive)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if kt := values.Get("knowledge_type"); kt != "" {
		f.KnowledgeType = &kt
	}

	if rl := values.Get("risk_level"); rl != "" {
		f.RiskLevel = &rl
	}

	if d := values.Get("document_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.DocumentID = &id
		}
	}

	switch values.Get("is_active") {
	case "true":
		active := true
		f.IsActive = &active
	case "false":
		active := false
		f.IsActive = &active
	}

	return f
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	err := s.Scan(
		&e.ID,
		&e.CompanyID,
		&e.DocumentID,
		&e.KnowledgeType,
		&e.Title,
		&e.Content,
		&e.RiskLevel,
		&e.Deadline,
		&e.Metadata,
		&e.Tags,
		&e.Embedding,
		&e.EmbeddingVersion,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}
