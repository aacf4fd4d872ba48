package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/daybook/daybook/internal/auth"
	"github.com/daybook/daybook/internal/handler/dto"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/service"
)

// NoteManager is the slice of the note service the handlers need.
type NoteManager interface {
	CreateNote(ctx context.Context, userID string, input service.CreateNoteInput) (*model.Note, error)
	ListNotes(ctx context.Context, userID string, page, itemsPerPage int) (*service.NoteList, error)
	GetNote(ctx context.Context, userID, id string) (*model.Note, error)
	UpdateNote(ctx context.Context, userID, id string, patch model.NotePatch) (*model.Note, error)
	DeleteNote(ctx context.Context, userID, id string) error
}

// NoteHandler handles HTTP requests for note operations.
// Every operation is scoped to the authenticated caller; another user's
// notes are invisible.
type NoteHandler struct {
	svc    NoteManager
	logger *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc NoteManager, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	note, err := h.svc.CreateNote(r.Context(), identity.ID, service.CreateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		MemoDate: req.MemoDate,
		Tags:     req.Tags,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_created",
		"note_id", note.ID,
		"user_id", identity.ID,
		"tag_count", len(note.Tags),
	)

	writeJSON(w, http.StatusCreated, dto.ToNoteResponse(note))
}

// List handles GET /notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	query := r.URL.Query()

	page := 1
	if p := query.Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	itemsPerPage := 10
	if i := query.Get("items_per_page"); i != "" {
		if parsed, err := strconv.Atoi(i); err == nil && parsed > 0 && parsed <= 100 {
			itemsPerPage = parsed
		}
	}

	list, err := h.svc.ListNotes(r.Context(), identity.ID, page, itemsPerPage)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToNoteListResponse(list.TotalCount, list.Page, list.ItemsPerPage, list.Notes))
}

// Get handles GET /notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Note ID is required")
		return
	}

	note, err := h.svc.GetNote(r.Context(), identity.ID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// Update handles PUT /notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Note ID is required")
		return
	}

	var req dto.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	note, err := h.svc.UpdateNote(r.Context(), identity.ID, id, req.ToPatch())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_updated",
		"note_id", note.ID,
		"user_id", identity.ID,
	)

	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// Delete handles DELETE /notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Note ID is required")
		return
	}

	if err := h.svc.DeleteNote(r.Context(), identity.ID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_deleted",
		"note_id", id,
		"user_id", identity.ID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *NoteHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
