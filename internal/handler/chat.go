package handler

import (
	"log/slog"
	"net/http"

	"fieldguide/internal/handler/sse"
	"fieldguide/internal/httputil"
	"fieldguide/internal/service/llm"
)

// ChatHandler handles the public reader chat and workspace
// conversations. Replies stream over SSE.
type ChatHandler struct {
	chatService *llm.ChatService
	sseConfig   *sse.Config
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService *llm.ChatService, sseConfig *sse.Config, logger *slog.Logger) *ChatHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &ChatHandler{
		chatService: chatService,
		sseConfig:   sseConfig,
		logger:      logger,
	}
}

// ReaderChat streams a grounded reply for the public reader.
// POST /chat
func (h *ChatHandler) ReaderChat(w http.ResponseWriter, r *http.Request) {
	var req llm.ReaderChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chunks, err := h.chatService.ReaderChat(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	h.streamChunks(w, r, chunks)
}

// CreateMessage adds a user turn to the workspace conversation and
// streams the assistant reply.
// POST /api/admin/workspaces/{id}/messages
func (h *ChatHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	var req llm.WorkspaceChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.WorkspaceID = workspaceID

	chunks, err := h.chatService.WorkspaceChat(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	h.streamChunks(w, r, chunks)
}

// ListMessages returns the workspace conversation.
// GET /api/admin/workspaces/{id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := PathParam(w, r, "id", "workspace ID")
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, messages)
}

// streamChunks forwards chat chunks as SSE data frames with keep-alive
// comments, ending with the [DONE] sentinel. A consumer disconnect
// cancels the request context, which stops the producer.
func (h *ChatHandler) streamChunks(w http.ResponseWriter, r *http.Request, chunks <-chan llm.Chunk) {
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
			if err := writer.SendJSON(chunk); err != nil {
				h.logger.Debug("client disconnected mid-stream", "error", err)
				return
			}
		case <-keepAliveDone:
			// Keep-alive detected a dead connection.
			return
		case <-r.Context().Done():
			return
		}
	}
}
