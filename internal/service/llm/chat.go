package llm

import (
	"context"
	"log/slog"
	"strings"

	"fieldguide/internal/config"
	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// apologyMessage replaces the raw error when a provider fails
// mid-stream. The stream still terminates cleanly.
const apologyMessage = "Sorry, I ran into a problem while answering. Please try again."

const readerIdentity = "You are the field guide's reading companion. You help readers understand the patterns, signals and protocols in this issue."

const workspaceIdentity = "You are a writing collaborator for a field guide issue in progress. You help the author develop sections, sharpen pattern names and tighten protocols."

// Chunk is one increment of a chat reply. References lists pattern
// names first spotted in the reply at this chunk.
type Chunk struct {
	Content    string   `json:"content"`
	References []string `json:"references,omitempty"`
}

// ChatService runs reader and workspace conversations against the
// provider registry.
type ChatService struct {
	registry      *Registry
	issueRepo     repositories.IssueRepository
	workspaceRepo repositories.WorkspaceRepository
	draftRepo     repositories.DraftRepository
	messageRepo   repositories.MessageRepository
	activityRepo  repositories.ActivityRepository
	defaultModel  string
	logger        *slog.Logger
}

// NewChatService creates a new chat service.
func NewChatService(
	registry *Registry,
	issueRepo repositories.IssueRepository,
	workspaceRepo repositories.WorkspaceRepository,
	draftRepo repositories.DraftRepository,
	messageRepo repositories.MessageRepository,
	activityRepo repositories.ActivityRepository,
	defaultModel string,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		registry:      registry,
		issueRepo:     issueRepo,
		workspaceRepo: workspaceRepo,
		draftRepo:     draftRepo,
		messageRepo:   messageRepo,
		activityRepo:  activityRepo,
		defaultModel:  defaultModel,
		logger:        logger,
	}
}

// ListMessages returns the workspace conversation in replay order.
func (s *ChatService) ListMessages(ctx context.Context, workspaceID string) ([]*models.Message, error) {
	if _, err := s.workspaceRepo.GetByID(ctx, workspaceID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByWorkspace(ctx, workspaceID)
}

// ReaderChatRequest is a public chat turn, optionally grounded in one
// published issue.
type ReaderChatRequest struct {
	Messages  []Message `json:"messages"`
	IssueSlug string    `json:"issueContext,omitempty"`
	Model     string    `json:"modelId,omitempty"`
}

// ReaderChat streams a grounded reply for the public reader. The
// returned channel yields content increments and closes when the reply
// is complete, failed with an apology, or the caller cancelled ctx.
func (s *ChatService) ReaderChat(ctx context.Context, req *ReaderChatRequest) (<-chan Chunk, error) {
	if len(req.Messages) == 0 {
		return nil, domain.Validationf("messages are required")
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	provider, err := s.registry.ForModel(model)
	if err != nil {
		return nil, domain.Validationf("%v", err)
	}

	var pc *PackedContext
	if req.IssueSlug != "" {
		issue, err := s.issueRepo.GetBySlug(ctx, req.IssueSlug)
		if err != nil {
			return nil, err
		}
		pc, err = PackIssueContext(issue, config.MaxContextChars)
		if err != nil {
			return nil, err
		}
	} else {
		pc = &PackedContext{Meta: map[string]string{}, Toc: []TocItem{}, Entries: []PackedEntry{}}
	}

	events, err := provider.StreamResponse(ctx, &GenerateRequest{
		Model:    model,
		System:   BuildSystemPrompt(readerIdentity, pc),
		Messages: req.Messages,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk, 10)
	go func() {
		defer close(out)
		refs := newReferenceTracker(pc)
		for event := range events {
			switch {
			case event.Err != nil:
				s.logger.Warn("chat stream failed", "model", model, "error", event.Err)
				out <- Chunk{Content: apologyMessage}
				return
			case event.Metadata != nil:
				return
			case event.TextDelta != "":
				out <- Chunk{Content: event.TextDelta, References: refs.observe(event.TextDelta)}
			}
		}
	}()

	return out, nil
}

// WorkspaceChatRequest is an authoring chat turn inside a workspace.
type WorkspaceChatRequest struct {
	WorkspaceID string
	Content     string  `json:"content"`
	SectionPath *string `json:"sectionPath,omitempty"`
	Model       string  `json:"modelId,omitempty"`
}

// WorkspaceChat persists the user turn, streams the assistant reply
// grounded in the current draft, and persists the full assistant turn
// once the stream completes. A caller abort stops the stream without
// persisting a partial reply.
func (s *ChatService) WorkspaceChat(ctx context.Context, req *WorkspaceChatRequest) (<-chan Chunk, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, domain.Validationf("message content is required")
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	provider, err := s.registry.ForModel(model)
	if err != nil {
		return nil, domain.Validationf("%v", err)
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	draft, err := s.draftRepo.GetByWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	history, err := s.messageRepo.ListByWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	userMessage := &models.Message{
		WorkspaceID: req.WorkspaceID,
		Role:        models.RoleUser,
		Content:     req.Content,
		SectionPath: req.SectionPath,
	}
	if err := s.messageRepo.Create(ctx, userMessage); err != nil {
		return nil, err
	}
	s.recordMessageActivity(ctx, req.WorkspaceID, userMessage)

	sectionPath := ""
	if req.SectionPath != nil {
		sectionPath = *req.SectionPath
	}
	pc, err := PackDraftContext(workspace, draft, sectionPath, config.MaxContextChars)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: models.RoleUser, Content: req.Content})

	events, err := provider.StreamResponse(ctx, &GenerateRequest{
		Model:    model,
		System:   BuildSystemPrompt(workspaceIdentity, pc),
		Messages: messages,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk, 10)
	go func() {
		defer close(out)

		refs := newReferenceTracker(pc)
		var reply strings.Builder
		for event := range events {
			switch {
			case event.Err != nil:
				s.logger.Warn("workspace chat stream failed", "workspace_id", req.WorkspaceID, "model", model, "error", event.Err)
				out <- Chunk{Content: apologyMessage}
				s.persistAssistantMessage(ctx, req.WorkspaceID, req.SectionPath, apologyMessage, model)
				return
			case event.Metadata != nil:
				s.persistAssistantMessage(ctx, req.WorkspaceID, req.SectionPath, reply.String(), model)
				return
			case event.TextDelta != "":
				reply.WriteString(event.TextDelta)
				out <- Chunk{Content: event.TextDelta, References: refs.observe(event.TextDelta)}
			}
		}

		// Channel closed with no terminal event: the caller aborted.
		// Nothing extra is persisted.
		s.logger.Debug("workspace chat aborted", "workspace_id", req.WorkspaceID)
	}()

	return out, nil
}

// persistAssistantMessage stores the completed reply. It runs after the
// stream ends, so it must survive the request context being cancelled.
func (s *ChatService) persistAssistantMessage(ctx context.Context, workspaceID string, sectionPath *string, content, model string) {
	if content == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)

	message := &models.Message{
		WorkspaceID: workspaceID,
		Role:        models.RoleAssistant,
		Content:     content,
		SectionPath: sectionPath,
		Metadata:    map[string]interface{}{"model": model},
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		s.logger.Error("failed to persist assistant message", "workspace_id", workspaceID, "error", err)
		return
	}
	s.recordMessageActivity(ctx, workspaceID, message)
}

func (s *ChatService) recordMessageActivity(ctx context.Context, workspaceID string, message *models.Message) {
	activity := &models.Activity{
		WorkspaceID: workspaceID,
		Type:        models.ActivityMessageSent,
		Payload: map[string]interface{}{
			"message_id": message.ID,
			"role":       message.Role,
		},
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", "workspace_id", workspaceID, "error", err)
	}
}

// referenceTracker reports each known pattern name once, on the chunk
// where it first appears in the accumulated reply.
type referenceTracker struct {
	patterns map[string]string // lowercase name -> display name
	seen     map[string]bool
	text     strings.Builder
}

func newReferenceTracker(pc *PackedContext) *referenceTracker {
	t := &referenceTracker{
		patterns: make(map[string]string, len(pc.Entries)),
		seen:     make(map[string]bool),
	}
	for _, entry := range pc.Entries {
		if entry.Pattern != "" {
			t.patterns[strings.ToLower(entry.Pattern)] = entry.Pattern
		}
	}
	return t
}

func (t *referenceTracker) observe(delta string) []string {
	t.text.WriteString(delta)
	lower := strings.ToLower(t.text.String())

	var found []string
	for key, name := range t.patterns {
		if t.seen[key] {
			continue
		}
		if strings.Contains(lower, key) {
			t.seen[key] = true
			found = append(found, name)
		}
	}
	return found
}
