package handler

import (
	"log/slog"
	"net/http"

	"fieldguide/internal/httputil"
	"fieldguide/internal/service"
)

// SuggestionHandler handles the proposed-edit review surface.
type SuggestionHandler struct {
	suggestionService *service.SuggestionService
	logger            *slog.Logger
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(suggestionService *service.SuggestionService, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService, logger: logger}
}

// List returns all suggestions for the workspace.
// GET /api/admin/workspaces/{id}/suggestions
func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	suggestions, err := h.suggestionService.ListSuggestions(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, suggestions)
}

// Create records a proposed edit.
// POST /api/admin/workspaces/{id}/suggestions
func (h *SuggestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	var req service.CreateSuggestionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.WorkspaceID = workspaceID

	suggestion, err := h.suggestionService.CreateSuggestion(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, suggestion)
}

// Apply applies a proposed suggestion to the draft.
// POST /api/admin/suggestions/{id}/apply
func (h *SuggestionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "suggestion ID")
	if !ok {
		return
	}

	suggestion, err := h.suggestionService.ApplySuggestion(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, suggestion)
}

// rejectRequest optionally explains the rejection.
type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject marks a proposed suggestion rejected.
// POST /api/admin/suggestions/{id}/reject
func (h *SuggestionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "suggestion ID")
	if !ok {
		return
	}

	var req rejectRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	suggestion, err := h.suggestionService.RejectSuggestion(r.Context(), id, req.Reason)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, suggestion)
}
