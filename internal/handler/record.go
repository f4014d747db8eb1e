package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/handler/dto"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/service"
)

// RecordService is the record CRUD used by RecordHandler.
type RecordService interface {
	List(ctx context.Context, id *model.Identity) ([]*model.Record, error)
	Create(ctx context.Context, id *model.Identity, in service.RecordInput) (*model.Record, error)
	Get(ctx context.Context, id *model.Identity, recordID string) (*model.Record, error)
	Update(ctx context.Context, id *model.Identity, recordID string, in service.RecordInput) (*model.Record, error)
	Delete(ctx context.Context, id *model.Identity, recordID string) error
}

// RecordHandler handles HTTP requests for record operations.
type RecordHandler struct {
	svc    RecordService
	logger *slog.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(svc RecordService, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{svc: svc, logger: logger}
}

// List handles GET /records.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.List(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRecordList(records))
}

// Create handles POST /records.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	rec, err := h.svc.Create(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("record_created",
		slog.String("record_id", rec.ID),
		slog.String("user_id", rec.OwnerID),
		slog.Int("images", len(rec.Content.Images)),
	)

	writeJSON(w, http.StatusOK, dto.ToRecordResponse(rec))
}

// Get handles GET /records/{id}.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRecordResponse(rec))
}

// Update handles PUT /records/{id}.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	rec, err := h.svc.Update(r.Context(), id, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("record_updated", slog.String("record_id", rec.ID))

	writeJSON(w, http.StatusOK, dto.ToRecordResponse(rec))
}

// Delete handles DELETE /records/{id}.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), auth.IdentityFromContext(r.Context()), recordID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("record_deleted", slog.String("record_id", recordID))

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}
