package companies

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/pagination"
	"github.com/arboretica/lore/pkg/query"
	"github.com/arboretica/lore/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a company repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "companies"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Company], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "TaxID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCompany)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}

	result := pagination.NewPageResult(rows, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Company, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCompany)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Company, error) {
	if strings.TrimSpace(cmd.Name) == "" || strings.TrimSpace(cmd.Country) == "" {
		return nil, fmt.Errorf("%w: name and country are required", ErrInvalidRequest)
	}
	if cmd.Language == "" {
		cmd.Language = "en"
	}

	q := `
		INSERT INTO companies(id, name, industry, country, language, tax_id, address, phone, email, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, name, industry, country, language, tax_id, address, phone, email, is_active, settings, created_at, updated_at`

	insertArgs := []any{
		uuid.New(),
		cmd.Name,
		cmd.Industry,
		cmd.Country,
		cmd.Language,
		cmd.TaxID,
		cmd.Address,
		cmd.Phone,
		cmd.Email,
		cmd.Settings,
	}

	c, err := repository.QueryOne(ctx, r.db, q, insertArgs, scanCompany)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company created", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Company, error) {
	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&current.Name, cmd.Name)
	applyString(&current.Country, cmd.Country)
	applyString(&current.Language, cmd.Language)
	if cmd.Industry != nil {
		current.Industry = cmd.Industry
	}
	if cmd.Address != nil {
		current.Address = cmd.Address
	}
	if cmd.Phone != nil {
		current.Phone = cmd.Phone
	}
	if cmd.Email != nil {
		current.Email = cmd.Email
	}
	if cmd.IsActive != nil {
		current.IsActive = *cmd.IsActive
	}
	if cmd.Settings != nil {
		current.Settings = *cmd.Settings
	}

	q := `
		UPDATE companies SET
			name = $2, industry = $3, country = $4, language = $5,
			address = $6, phone = $7, email = $8, is_active = $9,
			settings = $10, updated_at = now()
		WHERE id = $1`

	err = repository.ExecExpectOne(ctx, r.db, q,
		id,
		current.Name,
		current.Industry,
		current.Country,
		current.Language,
		current.Address,
		current.Phone,
		current.Email,
		current.IsActive,
		current.Settings,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company updated", "id", id)
	return r.Find(ctx, id)
}

// Delete removes a company. Users, documents, and knowledge entries
// cascade in the database.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM companies WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company deleted", "id", id)
	return nil
}

func (r *repo) ListUsers(ctx context.Context, companyID uuid.UUID) ([]User, error) {
	q, args := query.
		NewBuilder(userProjection, query.SortField{Field: "FullName"}).
		WhereEquals("CompanyID", companyID).
		Build()

	users, err := repository.QueryMany(ctx, r.db, q, args, scanUser)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return users, nil
}

func (r *repo) CreateUser(ctx context.Context, companyID uuid.UUID, cmd CreateUserCommand) (*User, error) {
	if strings.TrimSpace(cmd.Email) == "" || strings.TrimSpace(cmd.FullName) == "" {
		return nil, fmt.Errorf("%w: email and full_name are required", ErrInvalidRequest)
	}
	if cmd.Role == "" {
		cmd.Role = RoleEmployee
	}
	if !validRole(cmd.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, cmd.Role)
	}

	if _, err := r.Find(ctx, companyID); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO users(id, company_id, email, full_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, company_id, email, full_name, role, is_active, created_at, updated_at`

	u, err := repository.QueryOne(ctx, r.db, q,
		[]any{uuid.New(), companyID, cmd.Email, cmd.FullName, cmd.Role},
		scanUser,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrUserNotFound, ErrUserDuplicate)
	}

	r.logger.Info("user created", "id", u.ID, "company_id", companyID, "email", u.Email)
	return &u, nil
}
