package companies

import (
	"net/url"

	"github.com/arboretica/lore/pkg/query"
	"github.com/arboretica/lore/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "companies", "c").
	Project("id", "ID").
	Project("name", "Name").
	Project("industry", "Industry").
	Project("country", "Country").
	Project("language", "Language").
	Project("tax_id", "TaxID").
	Project("address", "Address").
	Project("phone", "Phone").
	Project("email", "Email").
	Project("is_active", "IsActive").
	Project("settings", "Settings").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var userProjection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("company_id", "CompanyID").
	Project("email", "Email").
	Project("full_name", "FullName").
	Project("role", "Role").
	Project("is_active", "IsActive").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Name"}

// Filters contains optional filtering criteria for company queries.
// Nil fields are ignored.
type Filters struct {
	Country  *string `json:"country,omitempty"`
	Industry *string `json:"industry,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Country", f.Country).
		WhereContains("Industry", f.Industry).
		WhereEquals("IsActive", f.IsActive)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("country"); c != "" {
		f.Country = &c
	}

	if i := values.Get("industry"); i != "" {
		f.Industry = &i
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

func scanCompany(s repository.Scanner) (Company, error) {
	var c Company
	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.Industry,
		&c.Country,
		&c.Language,
		&c.TaxID,
		&c.Address,
		&c.Phone,
		&c.Email,
		&c.IsActive,
		&c.Settings,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID,
		&u.CompanyID,
		&u.Email,
		&u.FullName,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
