package handler

import (
	"io"
	"log/slog"
	"net/http"

	"fieldguide/internal/config"
	"fieldguide/internal/httputil"
	"fieldguide/internal/service"
)

// ResourceHandler handles workspace attachments.
type ResourceHandler struct {
	resourceService *service.ResourceService
	logger          *slog.Logger
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler(resourceService *service.ResourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService, logger: logger}
}

// Create attaches a text or url resource.
// POST /api/admin/workspaces/{id}/resources
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	var req service.CreateResourceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resource, err := h.resourceService.CreateResource(r.Context(), workspaceID, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resource)
}

// Upload stores a file resource from a multipart form field "file".
// POST /api/admin/workspaces/{id}/resources/upload
func (h *ResourceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	resource, err := h.resourceService.UploadFile(r.Context(), workspaceID, header.Filename, contentType, header.Size, file)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resource)
}

// List returns all resources attached to the workspace.
// GET /api/admin/workspaces/{id}/resources
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	resources, err := h.resourceService.ListResources(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resources)
}

// Download streams the stored bytes of a file resource.
// GET /api/admin/resources/{id}/download
func (h *ResourceHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "resource ID")
	if !ok {
		return
	}

	resource, rc, err := h.resourceService.OpenFile(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	defer rc.Close()

	if resource.MimeType != "" {
		w.Header().Set("Content-Type", resource.MimeType)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+resource.Name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Debug("download interrupted", "resource_id", id, "error", err)
	}
}

// Delete removes a resource and its stored object.
// DELETE /api/admin/resources/{id}
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "resource ID")
	if !ok {
		return
	}

	if err := h.resourceService.DeleteResource(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
