package advisor

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/arboretica/lore/pkg/handlers"
	"github.com/arboretica/lore/pkg/routes"
)

// Handler provides the advisor ask endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "advisor"),
	}
}

// AskRequest is the JSON body for the ask endpoint.
type AskRequest struct {
	CompanyID    uuid.UUID `json:"company_id"`
	Query        string    `json:"query"`
	ContextLimit int       `json:"context_limit"`
}

// Routes returns the route group definition for advisor endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/advisor",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/ask", Handler: h.Ask},
		},
	}
}

// Ask answers a question grounded in the company's knowledge base.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidQuery)
		return
	}

	result, err := h.sys.Ask(r.Context(), req.CompanyID, req.Query, req.ContextLimit)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
