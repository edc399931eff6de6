package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// SuggestionService owns the review workflow for AI-proposed edits. The
// model never writes to the draft; it proposes diffs that are applied or
// rejected here.
type SuggestionService struct {
	suggestionRepo repositories.SuggestionRepository
	draftRepo      repositories.DraftRepository
	revisionRepo   repositories.RevisionRepository
	activityRepo   repositories.ActivityRepository
	txManager      repositories.TransactionManager
	logger         *slog.Logger
}

// NewSuggestionService creates a new suggestion service.
func NewSuggestionService(
	suggestionRepo repositories.SuggestionRepository,
	draftRepo repositories.DraftRepository,
	revisionRepo repositories.RevisionRepository,
	activityRepo repositories.ActivityRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *SuggestionService {
	return &SuggestionService{
		suggestionRepo: suggestionRepo,
		draftRepo:      draftRepo,
		revisionRepo:   revisionRepo,
		activityRepo:   activityRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

// CreateSuggestionRequest describes a proposed edit.
type CreateSuggestionRequest struct {
	WorkspaceID string          `json:"workspace_id"`
	SectionPath *string         `json:"section_path"`
	Diff        []models.DiffOp `json:"diff"`
	Rationale   string          `json:"rationale"`
}

// CreateSuggestion records a proposed edit against the workspace draft.
func (s *SuggestionService) CreateSuggestion(ctx context.Context, req *CreateSuggestionRequest) (*models.Suggestion, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Diff, validation.Required, validation.Length(1, 0)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	for _, op := range req.Diff {
		if op.Operation != models.DiffOpReplace && op.Operation != models.DiffOpAdd {
			return nil, domain.Validationf("unknown diff operation %q", op.Operation)
		}
		if op.Path == "" {
			return nil, domain.Validationf("diff operation is missing a path")
		}
	}

	draft, err := s.draftRepo.GetByWorkspace(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	suggestion := &models.Suggestion{
		WorkspaceID: req.WorkspaceID,
		DraftID:     draft.ID,
		SectionPath: req.SectionPath,
		Diff:        req.Diff,
		Rationale:   req.Rationale,
		Status:      models.SuggestionStatusProposed,
	}
	if err := s.suggestionRepo.Create(ctx, suggestion); err != nil {
		return nil, err
	}

	return suggestion, nil
}

// ListSuggestions returns a workspace's suggestions, newest first.
func (s *SuggestionService) ListSuggestions(ctx context.Context, workspaceID string) ([]*models.Suggestion, error) {
	return s.suggestionRepo.ListByWorkspace(ctx, workspaceID)
}

// ApplySuggestion applies a proposed suggestion to its draft. Four side
// effects happen in one transaction: new draft content, a new revision
// recording which suggestion was applied, the status flip to applied,
// and the audit entry. If any write fails nothing is visible.
//
// A diff whose path no longer exists in the content is a soft success:
// the content is left unchanged, the revision records the no-op, and
// the suggestion still becomes applied. The reviewer accepted it; the
// record says so even when the edit had nowhere to land.
func (s *SuggestionService) ApplySuggestion(ctx context.Context, suggestionID string) (*models.Suggestion, error) {
	suggestion, err := s.suggestionRepo.GetByID(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	if suggestion.Terminal() {
		return nil, fmt.Errorf("suggestion %s is already %s: %w", suggestionID, suggestion.Status, domain.ErrConflict)
	}

	draft, err := s.draftRepo.GetByWorkspace(ctx, suggestion.WorkspaceID)
	if err != nil {
		return nil, err
	}

	newContent, changed := ApplyDiffOps(draft.Content, suggestion.Diff)
	if !changed {
		s.logger.Info("suggestion diff did not apply cleanly, recording no-op",
			"suggestion_id", suggestionID,
			"workspace_id", suggestion.WorkspaceID,
		)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		revision := &models.Revision{
			WorkspaceID: suggestion.WorkspaceID,
			DraftID:     draft.ID,
			Content:     newContent,
			Metadata: map[string]interface{}{
				"suggestion_id": suggestion.ID,
				"rationale":     suggestion.Rationale,
				"noop":          !changed,
			},
		}
		if err := s.revisionRepo.Create(txCtx, revision); err != nil {
			return err
		}

		draft.Content = newContent
		draft.CurrentRevision = revision.Number
		if err := s.draftRepo.Update(txCtx, draft); err != nil {
			return err
		}

		if err := s.suggestionRepo.UpdateStatus(txCtx, suggestion.ID, models.SuggestionStatusApplied); err != nil {
			return err
		}

		return s.activityRepo.Create(txCtx, &models.Activity{
			WorkspaceID: suggestion.WorkspaceID,
			Type:        models.ActivitySuggestionApplied,
			Payload: map[string]interface{}{
				"suggestion_id": suggestion.ID,
				"revision":      revision.Number,
				"noop":          !changed,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	suggestion.Status = models.SuggestionStatusApplied
	return suggestion, nil
}

// RejectSuggestion marks a proposed suggestion rejected. The draft is
// not touched. Rejection is terminal.
func (s *SuggestionService) RejectSuggestion(ctx context.Context, suggestionID, reason string) (*models.Suggestion, error) {
	suggestion, err := s.suggestionRepo.GetByID(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	if suggestion.Terminal() {
		return nil, fmt.Errorf("suggestion %s is already %s: %w", suggestionID, suggestion.Status, domain.ErrConflict)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.suggestionRepo.UpdateStatus(txCtx, suggestion.ID, models.SuggestionStatusRejected); err != nil {
			return err
		}
		return s.activityRepo.Create(txCtx, &models.Activity{
			WorkspaceID: suggestion.WorkspaceID,
			Type:        models.ActivitySuggestionRejected,
			Payload: map[string]interface{}{
				"suggestion_id": suggestion.ID,
				"reason":        reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	suggestion.Status = models.SuggestionStatusRejected
	return suggestion, nil
}
