package analytics

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/handlers"
	"github.com/arboretica/lore/pkg/routes"
)

// Handler provides HTTP endpoints for analytics reports.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "analytics"),
	}
}

// Routes returns the route group definition for analytics endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analytics",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/overview", Handler: h.Overview},
			{Method: "GET", Pattern: "/compliance-score", Handler: h.ComplianceScore},
			{Method: "GET", Pattern: "/risk-summary", Handler: h.RiskSummary},
			{Method: "GET", Pattern: "/document-stats", Handler: h.DocumentStats},
		},
	}
}

// Overview returns company-wide processing counts and the requesting
// user's unread notification count. The company_id and user_id query
// parameters are required.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	overview, err := h.sys.Overview(r.Context(), companyID, userID)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, overview)
}

// ComplianceScore returns the company's deadline-based compliance
// score. The company_id query parameter is required.
func (h *Handler) ComplianceScore(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, func(r *http.Request, companyID uuid.UUID) (any, error) {
		return h.sys.ComplianceScore(r.Context(), companyID)
	})
}

// RiskSummary returns the company's risk entry counts by level. The
// company_id query parameter is required.
func (h *Handler) RiskSummary(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, func(r *http.Request, companyID uuid.UUID) (any, error) {
		return h.sys.RiskSummary(r.Context(), companyID)
	})
}

// DocumentStats returns the company's document type breakdown and
// recent upload count. The company_id query parameter is required.
func (h *Handler) DocumentStats(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, func(r *http.Request, companyID uuid.UUID) (any, error) {
		return h.sys.DocumentStats(r.Context(), companyID)
	})
}

func (h *Handler) report(
	w http.ResponseWriter,
	r *http.Request,
	load func(r *http.Request, companyID uuid.UUID) (any, error),
) {
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result, err := load(r, companyID)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
