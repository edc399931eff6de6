package handler

import (
	"log/slog"
	"net/http"

	"fieldguide/internal/handler/sse"
	"fieldguide/internal/httputil"
	"fieldguide/internal/service"
	"fieldguide/internal/service/llm"
)

// ImportHandler handles raw content imports and the streaming transform
// into structured issue JSON.
type ImportHandler struct {
	importService    *service.ContentImportService
	transformService *llm.TransformService
	sseConfig        *sse.Config
	logger           *slog.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(
	importService *service.ContentImportService,
	transformService *llm.TransformService,
	sseConfig *sse.Config,
	logger *slog.Logger,
) *ImportHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &ImportHandler{
		importService:    importService,
		transformService: transformService,
		sseConfig:        sseConfig,
		logger:           logger,
	}
}

// Create stores raw text for later transformation.
// POST /api/admin/imports
func (h *ImportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateImportRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	imp, err := h.importService.CreateImport(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, imp)
}

// List returns all imports, newest first.
// GET /api/admin/imports
func (h *ImportHandler) List(w http.ResponseWriter, r *http.Request) {
	imports, err := h.importService.ListImports(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, imports)
}

// transformRequest optionally ties the transform back to a stored
// import, which is marked transformed once the stream finishes.
type transformRequest struct {
	llm.TransformRequest
	ImportID string `json:"importId,omitempty"`
}

// Transform streams an LLM rewrite of free text into issue JSON over
// SSE. The final frame reports whether the output parsed.
// POST /api/admin/transform
func (h *ImportHandler) Transform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chunks, err := h.transformService.Transform(r.Context(), &req.TransformRequest)
	if err != nil {
		handleError(w, err)
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	keepAlive := sse.NewTickerKeepAlive(h.sseConfig.KeepAliveInterval)
	keepAliveDone := keepAlive.Start(writer, h.logger)
	defer keepAlive.Stop()

	for {
		select {
		case chunk, open := <-chunks:
			if !open {
				if err := writer.SendDone(); err != nil {
					h.logger.Debug("client gone before sentinel", "error", err)
				}
				return
			}
			if chunk.Done && chunk.Valid {
				h.importService.MarkTransformed(r.Context(), req.ImportID)
			}
			if err := writer.SendJSON(chunk); err != nil {
				h.logger.Debug("client disconnected mid-transform", "error", err)
				return
			}
		case <-keepAliveDone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
