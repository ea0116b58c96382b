package documents

import (
	"net/url"

	"github.com/arboretica/lore/pkg/query"
	"github.com/arboretica/lore/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("company_id", "CompanyID").
	Project("filename", "Filename").
	Project("original_filename", "OriginalFilename").
	Project("storage_key", "StorageKey").
	Project("size_bytes", "SizeBytes").
	Project("mime_type", "MimeType").
	Project("document_type", "DocumentType").
	Project("status", "Status").
	Project("version", "Version").
	Project("parent_id", "ParentID").
	Project("extracted_text", "ExtractedText").
	Project("summary", "Summary").
	Project("metadata", "Metadata").
	Project("tags", "Tags").
	Project("embedding", "Embedding").
	Project("embedding_version", "EmbeddingVersion").
	Project("uploaded_by", "UploadedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Project("processed_at", "ProcessedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored.
type Filters struct {
	Status       *string `json:"status,omitempty"`
	DocumentType *string `json:"document_type,omitempty"`
	Filename     *string `json:"filename,omitempty"`
	MimeType     *string `json:"mime_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("DocumentType", f.DocumentType).
		WhereContains("Filename", f.Filename).
		WhereEquals("MimeType", f.MimeType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if dt := values.Get("document_type"); dt != "" {
		f.DocumentType = &dt
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if mt := values.Get("mime_type"); mt != "" {
		f.MimeType = &mt
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.CompanyID,
		&d.Filename,
		&d.OriginalFilename,
		&d.StorageKey,
		&d.SizeBytes,
		&d.MimeType,
		&d.DocumentType,
		&d.Status,
		&d.Version,
		&d.ParentID,
		&d.ExtractedText,
		&d.Summary,
		&d.Metadata,
		&d.Tags,
		&d.Embedding,
		&d.EmbeddingVersion,
		&d.UploadedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.ProcessedAt,
	)
	return d, err
}
