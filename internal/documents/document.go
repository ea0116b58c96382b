// Package documents implements the document domain: upload and
// registration, blob storage integration, processing status, and the
// derived artifacts the ingestion pipeline writes back onto each row.
package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/repository"
	"github.com/arboretica/lore/pkg/vector"
)

// Document types assigned by classification.
const (
	TypeContract    = "contract"
	TypeInvoice     = "invoice"
	TypePolicy      = "policy"
	TypeReport      = "report"
	TypeTaxDocument = "tax_document"
	TypeHRDocument  = "hr_document"
	TypeCompliance  = "compliance"
	TypeOther       = "other"
)

// Document processing statuses. Transitions are forward-only:
// uploaded -> processing -> processed | failed; failed -> processing on
// reprocess, and processing -> processing when a redelivered job
// resumes a run cut short by a crash. Processed is terminal.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Types returns every recognized document type.
func Types() []string {
	return []string{
		TypeContract, TypeInvoice, TypePolicy, TypeReport,
		TypeTaxDocument, TypeHRDocument, TypeCompliance, TypeOther,
	}
}

// ValidType reports whether label is a recognized document type.
func ValidType(label string) bool {
	switch label {
	case TypeContract, TypeInvoice, TypePolicy, TypeReport,
		TypeTaxDocument, TypeHRDocument, TypeCompliance, TypeOther:
		return true
	}
	return false
}

// Document represents a registered document with its metadata, blob
// storage reference, and pipeline-derived artifacts.
type Document struct {
	ID               uuid.UUID          `json:"id"`
	CompanyID        uuid.UUID          `json:"company_id"`
	Filename         string             `json:"filename"`
	OriginalFilename string             `json:"original_filename"`
	StorageKey       string             `json:"storage_key"`
	SizeBytes        int64              `json:"size_bytes"`
	MimeType         string             `json:"mime_type"`
	DocumentType     string             `json:"document_type"`
	Status           string             `json:"status"`
	Version          int                `json:"version"`
	ParentID         *uuid.UUID         `json:"parent_id"`
	ExtractedText    *string            `json:"extracted_text,omitempty"`
	Summary          *string            `json:"summary"`
	Metadata         repository.Map     `json:"metadata"`
	Tags             repository.Strings `json:"tags"`
	Embedding        vector.Vector      `json:"-"`
	EmbeddingVersion *int               `json:"embedding_version,omitempty"`
	UploadedBy       *uuid.UUID         `json:"uploaded_by"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	ProcessedAt      *time.Time         `json:"processed_at"`
}

// CreateCommand carries the data needed to register an uploaded document.
// Data holds the raw file bytes; they are enqueued for ingestion, not
// stored on the row.
type CreateCommand struct {
	CompanyID  uuid.UUID
	Data       []byte
	Filename   string
	MimeType   string
	Tags       repository.Strings
	Metadata   repository.Map
	UploadedBy *uuid.UUID
	ParentID   *uuid.UUID
}

// PatchCommand carries a partial metadata update. Nil fields are left
// unchanged.
type PatchCommand struct {
	Tags     *repository.Strings `json:"tags"`
	Metadata *repository.Map     `json:"metadata"`
}
