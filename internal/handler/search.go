package handler

import (
	"log/slog"
	"net/http"

	"fieldguide/internal/httputil"
	"fieldguide/internal/service"
)

// SearchHandler handles keyword search and name suggestions.
type SearchHandler struct {
	searchService *service.SearchService
	logger        *slog.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{searchService: searchService, logger: logger}
}

// Search runs a relevance-scored keyword search.
// POST /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req service.SearchRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.searchService.Search(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Suggest returns pattern and section name completions for q.
// GET /api/search/suggestions?q=...
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	names, err := h.searchService.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": names})
}
