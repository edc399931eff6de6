package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"fieldguide/internal/httputil"
	"fieldguide/internal/service"
)

// WorkspaceHandler handles workspace lifecycle, publish and activities.
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
	publishService   *service.PublishService
	logger           *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(
	workspaceService *service.WorkspaceService,
	publishService *service.PublishService,
	logger *slog.Logger,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		publishService:   publishService,
		logger:           logger,
	}
}

// Create creates a workspace with its empty draft.
// POST /api/admin/workspaces
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	admin, _ := httputil.GetAdmin(r)

	var req service.CreateWorkspaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = admin.ID

	workspace, err := h.workspaceService.CreateWorkspace(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, workspace)
}

// List returns the caller's workspaces.
// GET /api/admin/workspaces
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	admin, _ := httputil.GetAdmin(r)

	workspaces, err := h.workspaceService.ListWorkspaces(r.Context(), admin.ID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, workspaces)
}

// Get returns one workspace.
// GET /api/admin/workspaces/{id}
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	workspace, err := h.workspaceService.GetWorkspace(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, workspace)
}

// Update merges title, goal and status changes.
// PATCH /api/admin/workspaces/{id}
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	var req service.UpdateWorkspaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workspace, err := h.workspaceService.UpdateWorkspace(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, workspace)
}

// Complete marks the workspace completed. Idempotent.
// POST /api/admin/workspaces/{id}/complete
func (h *WorkspaceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	workspace, err := h.workspaceService.CompleteWorkspace(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, workspace)
}

// Delete removes a workspace and everything under it.
// DELETE /api/admin/workspaces/{id}
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	if err := h.workspaceService.DeleteWorkspace(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Publish converts the workspace draft into a published issue.
// POST /api/admin/workspaces/{id}/publish
func (h *WorkspaceHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	var req service.PublishRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.WorkspaceID = id

	issue, err := h.publishService.Publish(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, issue)
}

// Activities lists the workspace audit log, newest first.
// GET /api/admin/workspaces/{id}/activities?limit=50
func (h *WorkspaceHandler) Activities(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	activities, err := h.workspaceService.ListActivities(r.Context(), id, limit)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, activities)
}
