package service

import (
	"context"
	"log/slog"

	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// RevisionService provides point-in-time snapshots of draft content and
// restore. Revisions are never edited or deleted; a restore is itself a
// new revision.
type RevisionService struct {
	revisionRepo repositories.RevisionRepository
	draftRepo    repositories.DraftRepository
	activityRepo repositories.ActivityRepository
	txManager    repositories.TransactionManager
	logger       *slog.Logger
}

// NewRevisionService creates a new revision service.
func NewRevisionService(
	revisionRepo repositories.RevisionRepository,
	draftRepo repositories.DraftRepository,
	activityRepo repositories.ActivityRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *RevisionService {
	return &RevisionService{
		revisionRepo: revisionRepo,
		draftRepo:    draftRepo,
		activityRepo: activityRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateRevision snapshots the current draft content. The snapshot is a
// deep copy; later draft edits never reach a stored revision.
func (s *RevisionService) CreateRevision(ctx context.Context, workspaceID string, metadata map[string]interface{}) (*models.Revision, error) {
	draft, err := s.draftRepo.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	revision := &models.Revision{
		WorkspaceID: workspaceID,
		DraftID:     draft.ID,
		Content:     deepCopyMap(draft.Content),
		Metadata:    metadata,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.revisionRepo.Create(txCtx, revision); err != nil {
			return err
		}

		draft.CurrentRevision = revision.Number
		if err := s.draftRepo.Update(txCtx, draft); err != nil {
			return err
		}

		return s.activityRepo.Create(txCtx, &models.Activity{
			WorkspaceID: workspaceID,
			Type:        models.ActivityRevisionCreated,
			Payload: map[string]interface{}{
				"revision": revision.Number,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return revision, nil
}

// ListRevisions returns all snapshots, most recent number first.
func (s *RevisionService) ListRevisions(ctx context.Context, workspaceID string) ([]*models.Revision, error) {
	return s.revisionRepo.ListByWorkspace(ctx, workspaceID)
}

// RestoreRevision copies a past snapshot's content back into the draft
// and records the restore as a new revision.
func (s *RevisionService) RestoreRevision(ctx context.Context, workspaceID string, number int) (*models.Revision, error) {
	past, err := s.revisionRepo.GetByNumber(ctx, workspaceID, number)
	if err != nil {
		return nil, err
	}

	draft, err := s.draftRepo.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	restored := &models.Revision{
		WorkspaceID: workspaceID,
		DraftID:     draft.ID,
		Content:     deepCopyMap(past.Content),
		Metadata: map[string]interface{}{
			"restored_from": past.Number,
		},
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.revisionRepo.Create(txCtx, restored); err != nil {
			return err
		}

		draft.Content = deepCopyMap(past.Content)
		draft.CurrentRevision = restored.Number
		if err := s.draftRepo.Update(txCtx, draft); err != nil {
			return err
		}

		return s.activityRepo.Create(txCtx, &models.Activity{
			WorkspaceID: workspaceID,
			Type:        models.ActivityRevisionCreated,
			Payload: map[string]interface{}{
				"revision":      restored.Number,
				"restored_from": past.Number,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return restored, nil
}
