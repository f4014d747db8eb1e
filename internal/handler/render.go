package handler

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/handler/dto"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/service"
)

// ExportService renders records to documents.
type ExportService interface {
	Preview(ctx context.Context, id *model.Identity, recordID string) (*service.Rendered, error)
	Export(ctx context.Context, id *model.Identity, recordID string) (*service.Rendered, error)
	Draft(ctx context.Context, id *model.Identity, in service.RecordInput, format string) (*service.Rendered, error)
	Archive(ctx context.Context, id *model.Identity, recordID string) (*service.Archived, error)
}

// RenderHandler serves previews and PDF downloads.
type RenderHandler struct {
	svc    ExportService
	logger *slog.Logger
}

// NewRenderHandler creates a new RenderHandler.
func NewRenderHandler(svc ExportService, logger *slog.Logger) *RenderHandler {
	return &RenderHandler{svc: svc, logger: logger}
}

// Preview handles GET /records/{id}/preview.
func (h *RenderHandler) Preview(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Preview(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeDocument(w, out, false)
}

// Export handles GET /records/{id}/export.
func (h *RenderHandler) Export(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Export(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("record_exported",
		slog.String("record_id", chi.URLParam(r, "id")),
		slog.Int("bytes", len(out.Body)),
	)
	writeDocument(w, out, true)
}

// Draft handles POST /preview. ?format=pdf returns a PDF download.
func (h *RenderHandler) Draft(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		writeServiceError(w, r, h.logger, service.ErrUnauthenticated)
		return
	}

	var in service.RecordInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	format := service.FormatHTML
	if r.URL.Query().Get("format") == service.FormatPDF {
		format = service.FormatPDF
	}

	out, err := h.svc.Draft(r.Context(), id, in, format)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeDocument(w, out, format == service.FormatPDF)
}

// Archive handles POST /records/{id}/archive.
func (h *RenderHandler) Archive(w http.ResponseWriter, r *http.Request) {
	got, err := h.svc.Archive(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("record_archived", slog.String("key", got.Key))

	writeJSON(w, http.StatusOK, dto.ArchiveResponse{Key: got.Key, URL: got.URL, ExpiresAt: got.ExpiresAt})
}

func writeDocument(w http.ResponseWriter, out *service.Rendered, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": out.Filename}))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}
