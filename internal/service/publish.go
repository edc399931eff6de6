package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// Icon and color palettes assigned to sections by ordinal position.
// Modulo assignment guarantees visual variety without randomness and
// keeps the conversion deterministic.
var (
	sectionIcons  = []string{"compass", "map", "flag", "lantern", "rope", "knot", "tent"}
	sectionColors = []string{"amber", "teal", "violet", "rose"}
)

// Keyword sets for heuristic signal and protocol extraction. Best-effort
// structuring aids, not NLP.
var (
	signalKeywords   = []string{"when", "if", "warning", "alert", "issue", "problem", "symptom"}
	protocolKeywords = []string{"step", "first", "then", "finally", "process", "method", "approach"}
)

// Fallbacks when a description carries no extractable structure.
var (
	placeholderSignals = []string{
		"You notice recurring friction in this area",
		"The usual approach stops producing results",
		"Small irritations start compounding",
	}
	placeholderProtocol = "1. Pause and observe the situation → 2. Name the pattern you are seeing → 3. Try the smallest useful response → 4. Review what changed"
)

const protocolSeparator = " → "

// PublishService converts a finished draft into an immutable issue.
type PublishService struct {
	workspaceRepo repositories.WorkspaceRepository
	draftRepo     repositories.DraftRepository
	issueRepo     repositories.IssueRepository
	activityRepo  repositories.ActivityRepository
	searchService *SearchService
	txManager     repositories.TransactionManager
	logger        *slog.Logger
}

// NewPublishService creates a new publish service.
func NewPublishService(
	workspaceRepo repositories.WorkspaceRepository,
	draftRepo repositories.DraftRepository,
	issueRepo repositories.IssueRepository,
	activityRepo repositories.ActivityRepository,
	searchService *SearchService,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *PublishService {
	return &PublishService{
		workspaceRepo: workspaceRepo,
		draftRepo:     draftRepo,
		issueRepo:     issueRepo,
		activityRepo:  activityRepo,
		searchService: searchService,
		txManager:     txManager,
		logger:        logger,
	}
}

// PublishRequest names the target issue for a workspace's draft.
type PublishRequest struct {
	WorkspaceID string     `json:"workspace_id"`
	Slug        string     `json:"slug"`
	Version     string     `json:"version"`
	PublishedAt *time.Time `json:"published_at"`
}

// Publish converts the workspace draft into a new issue. Preconditions
// are hard failures with nothing partially published: the workspace must
// exist, its draft must have at least one outline section, and the slug
// must be unused. On success the issue insert, the workspace completion
// and the publish activity commit together.
func (s *PublishService) Publish(ctx context.Context, req *PublishRequest) (*models.Issue, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Slug, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Version, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	draft, err := s.draftRepo.GetByWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if len(draft.Outline) == 0 {
		return nil, domain.Validationf("draft has no outline sections to publish")
	}

	publishedAt := req.PublishedAt
	if publishedAt == nil {
		now := time.Now().UTC()
		publishedAt = &now
	}

	issue := &models.Issue{
		Slug:        req.Slug,
		Title:       workspace.Title,
		Version:     req.Version,
		Intro:       workspace.Goal,
		Sections:    ConvertDraftToIssue(draft.Outline),
		PublishedAt: publishedAt,
		Metadata: map[string]interface{}{
			"workspace_id": workspace.ID,
		},
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// The unique slug constraint rejects duplicates here; the whole
		// transaction rolls back and workspace status stays untouched.
		if err := s.issueRepo.Create(txCtx, issue); err != nil {
			return err
		}

		workspace.Status = models.WorkspaceStatusCompleted
		if err := s.workspaceRepo.Update(txCtx, workspace); err != nil {
			return err
		}

		if err := s.activityRepo.Create(txCtx, &models.Activity{
			WorkspaceID: workspace.ID,
			Type:        models.ActivityPublish,
			Payload: map[string]interface{}{
				"slug":    issue.Slug,
				"version": issue.Version,
			},
		}); err != nil {
			return err
		}

		return s.searchService.ReindexIssue(txCtx, issue)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("workspace published",
		"workspace_id", workspace.ID,
		"slug", issue.Slug,
	)

	return issue, nil
}

// ConvertDraftToIssue turns an outline into published sections. Only
// level 1 roots become sections; their own content becomes a first
// entry and each level 2 child becomes one more. Roots at other levels
// are dropped silently. Output is deterministic for identical input.
func ConvertDraftToIssue(outline []models.DraftSection) []models.Section {
	sections := make([]models.Section, 0, len(outline))

	ordinal := 0
	for _, root := range outline {
		if root.Level != 1 {
			continue
		}

		section := models.Section{
			ID:      sectionID(root),
			Title:   root.Title,
			Icon:    sectionIcons[ordinal%len(sectionIcons)],
			Color:   sectionColors[ordinal%len(sectionColors)],
			Entries: []models.Entry{},
		}
		ordinal++

		if strings.TrimSpace(root.Content) != "" {
			section.Entries = append(section.Entries, entryFromSection(root.Title, root.Content))
		}

		for _, child := range root.Children {
			if child.Level != 2 {
				continue
			}
			section.Entries = append(section.Entries, entryFromSection(child.Title, child.Content))
		}

		sections = append(sections, section)
	}

	return sections
}

func sectionID(sec models.DraftSection) string {
	if sec.ID != "" {
		return sec.ID
	}
	return uuid.NewString()
}

func entryFromSection(title, content string) models.Entry {
	return models.Entry{
		Pattern:     title,
		Description: content,
		Signals:     ExtractSignals(content),
		Protocol:    ExtractProtocol(content),
	}
}

// ExtractSignals pulls up to three sentences that look like observable
// symptoms out of a description. No match falls back to the fixed
// placeholder triple.
func ExtractSignals(description string) []string {
	var signals []string
	for _, sentence := range splitSentences(description) {
		if containsAnyKeyword(sentence, signalKeywords) {
			signals = append(signals, sentence)
			if len(signals) == 3 {
				break
			}
		}
	}

	if len(signals) == 0 {
		return append([]string(nil), placeholderSignals...)
	}
	return signals
}

// ExtractProtocol joins sentences that look like actionable steps with
// an arrow separator. No match falls back to the fixed 4-step
// placeholder.
func ExtractProtocol(description string) string {
	var steps []string
	for _, sentence := range splitSentences(description) {
		if containsAnyKeyword(sentence, protocolKeywords) {
			steps = append(steps, sentence)
		}
	}

	if len(steps) == 0 {
		return placeholderProtocol
	}
	return strings.Join(steps, protocolSeparator)
}

func splitSentences(text string) []string {
	var sentences []string
	for _, raw := range strings.Split(text, ".") {
		sentence := strings.TrimSpace(raw)
		if sentence != "" {
			sentences = append(sentences, sentence+".")
		}
	}
	return sentences
}

func containsAnyKeyword(sentence string, keywords []string) bool {
	lower := strings.ToLower(sentence)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
