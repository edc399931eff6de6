package handler

import (
	"log/slog"
	"net/http"

	"fieldguide/internal/httputil"
	"fieldguide/internal/service"
)

// BookmarkHandler handles reader bookmarks. Readers identify themselves
// with an opaque user id; there is no reader login.
type BookmarkHandler struct {
	bookmarkService *service.BookmarkService
	logger          *slog.Logger
}

// NewBookmarkHandler creates a new bookmark handler.
func NewBookmarkHandler(bookmarkService *service.BookmarkService, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService, logger: logger}
}

// Create saves a bookmark. A duplicate returns 409.
// POST /api/bookmarks
func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookmarkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bookmark, err := h.bookmarkService.CreateBookmark(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, bookmark)
}

// List returns a user's bookmarks.
// GET /api/bookmarks?userId=...
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	bookmarks, err := h.bookmarkService.ListBookmarks(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, bookmarks)
}

// Check reports whether an identical bookmark already exists.
// POST /api/bookmarks/check
func (h *BookmarkHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookmarkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exists, err := h.bookmarkService.CheckBookmark(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"bookmarked": exists})
}

// Delete removes a bookmark owned by the user.
// DELETE /api/bookmarks/{id}?userId=...
func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "bookmark ID")
	if !ok {
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	if err := h.bookmarkService.DeleteBookmark(r.Context(), id, userID); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
