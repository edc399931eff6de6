package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"fieldguide/internal/httputil"
	"fieldguide/internal/service"
)

// DraftHandler handles draft reads and edits plus the revision log.
type DraftHandler struct {
	draftService    *service.DraftService
	revisionService *service.RevisionService
	logger          *slog.Logger
}

// NewDraftHandler creates a new draft handler.
func NewDraftHandler(draftService *service.DraftService, revisionService *service.RevisionService, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		draftService:    draftService,
		revisionService: revisionService,
		logger:          logger,
	}
}

// Get returns the workspace draft.
// GET /api/admin/workspaces/{id}/draft
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	draft, err := h.draftService.GetDraft(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, draft)
}

// Update merges content and outline changes without snapshotting.
// PATCH /api/admin/workspaces/{id}/draft
func (h *DraftHandler) Update(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	var req service.UpdateDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.draftService.UpdateDraft(r.Context(), workspaceID, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, draft)
}

// AddSection inserts an outline section.
// POST /api/admin/workspaces/{id}/draft/sections
func (h *DraftHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	var req service.AddSectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.draftService.AddSection(r.Context(), workspaceID, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, draft)
}

// updateSectionRequest targets one outline section by id.
type updateSectionRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// UpdateSection sets a section's title or content. A missing section id
// is a silent no-op returning the unchanged draft.
// PATCH /api/admin/workspaces/{id}/draft/sections/{sectionId}
func (h *DraftHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}
	sectionID, ok := PathParam(w, r, "sectionId", "section ID")
	if !ok {
		return
	}

	var req updateSectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.draftService.UpdateSectionField(r.Context(), workspaceID, sectionID, service.SectionField(req.Field), req.Value)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, draft)
}

// createRevisionRequest optionally annotates the snapshot.
type createRevisionRequest struct {
	Metadata map[string]interface{} `json:"metadata"`
}

// CreateRevision snapshots the current draft content.
// POST /api/admin/workspaces/{id}/revisions
func (h *DraftHandler) CreateRevision(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	var req createRevisionRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	revision, err := h.revisionService.CreateRevision(r.Context(), workspaceID, req.Metadata)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, revision)
}

// ListRevisions returns all snapshots, newest first.
// GET /api/admin/workspaces/{id}/revisions
func (h *DraftHandler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	revisions, err := h.revisionService.ListRevisions(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, revisions)
}

// RestoreRevision copies a past snapshot back into the draft.
// POST /api/admin/workspaces/{id}/revisions/{number}/restore
func (h *DraftHandler) RestoreRevision(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}
	raw, ok := PathParam(w, r, "number", "revision number")
	if !ok {
		return
	}
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "revision number must be a positive integer")
		return
	}

	revision, err := h.revisionService.RestoreRevision(r.Context(), workspaceID, number)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, revision)
}
