package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/arboretica/lore/internal/documents"
	"github.com/arboretica/lore/pkg/handlers"
	"github.com/arboretica/lore/pkg/routes"
	"github.com/arboretica/lore/pkg/storage"
)

// downloadHandler streams stored document blobs back to the client.
type downloadHandler struct {
	documents documents.System
	store     storage.System
	logger    *slog.Logger
}

func newDownloadHandler(
	docs documents.System,
	store storage.System,
	logger *slog.Logger,
) *downloadHandler {
	return &downloadHandler{
		documents: docs,
		store:     store,
		logger:    logger.With("handler", "download"),
	}
}

func (h *downloadHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/download", Handler: h.download},
		},
	}
}

func (h *downloadHandler) download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusBadRequest, documents.ErrNotFound,
		)
		return
	}

	doc, err := h.documents.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			documents.MapHTTPStatus(err), err,
		)
		return
	}

	body, err := h.store.Download(r.Context(), doc.StorageKey)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", doc.OriginalFilename),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
