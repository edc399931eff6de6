package handler

import (
	"log/slog"
	"net/http"

	"fieldguide/internal/domain/models"
	"fieldguide/internal/httputil"
	"fieldguide/internal/service"
)

// IssueHandler handles published issue reads and admin issue CRUD.
type IssueHandler struct {
	issueService *service.IssueService
	logger       *slog.Logger
}

// NewIssueHandler creates a new issue handler.
func NewIssueHandler(issueService *service.IssueService, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{issueService: issueService, logger: logger}
}

// List returns all published issues.
// GET /api/issues
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	issues, err := h.issueService.ListIssues(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, issues)
}

// Get returns one issue by slug.
// GET /api/issues/{slug}
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug, ok := PathParam(w, r, "slug", "issue slug")
	if !ok {
		return
	}

	issue, err := h.issueService.GetIssue(r.Context(), slug)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, issue)
}

// Create stores a new issue.
// POST /api/admin/issues
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateIssueRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	issue, err := h.issueService.CreateIssue(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.Issue, error) {
			return h.issueService.GetIssue(r.Context(), req.Slug)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, issue)
}

// Update merges fields into an issue. The slug is immutable.
// PATCH /api/admin/issues/{slug}
func (h *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	slug, ok := PathParam(w, r, "slug", "issue slug")
	if !ok {
		return
	}

	var req service.UpdateIssueRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	issue, err := h.issueService.UpdateIssue(r.Context(), slug, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, issue)
}

// Delete removes an issue and its search index rows.
// DELETE /api/admin/issues/{slug}
func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug, ok := PathParam(w, r, "slug", "issue slug")
	if !ok {
		return
	}

	if err := h.issueService.DeleteIssue(r.Context(), slug); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
