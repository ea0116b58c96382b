// Package companies implements the tenant domain: companies and the
// users that belong to them. Every document, knowledge entry, and
// notification in the service is owned through a company.
package companies

import (
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/repository"
)

// Company represents a tenant.
type Company struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Industry  *string        `json:"industry"`
	Country   string         `json:"country"`
	Language  string         `json:"language"`
	TaxID     *string        `json:"tax_id"`
	Address   *string        `json:"address"`
	Phone     *string        `json:"phone"`
	Email     *string        `json:"email"`
	IsActive  bool           `json:"is_active"`
	Settings  repository.Map `json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateCommand carries the data needed to register a new company.
type CreateCommand struct {
	Name     string         `json:"name"`
	Industry *string        `json:"industry"`
	Country  string         `json:"country"`
	Language string         `json:"language"`
	TaxID    *string        `json:"tax_id"`
	Address  *string        `json:"address"`
	Phone    *string        `json:"phone"`
	Email    *string        `json:"email"`
	Settings repository.Map `json:"settings"`
}

// UpdateCommand carries a partial company update. Nil fields are left
// unchanged.
type UpdateCommand struct {
	Name     *string         `json:"name"`
	Industry *string         `json:"industry"`
	Country  *string         `json:"country"`
	Language *string         `json:"language"`
	Address  *string         `json:"address"`
	Phone    *string         `json:"phone"`
	Email    *string         `json:"email"`
	IsActive *bool           `json:"is_active"`
	Settings *repository.Map `json:"settings"`
}
