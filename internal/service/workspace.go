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

// WorkspaceService manages authoring sessions. Creating a workspace
// also creates its draft; the two are 1:1 and only transiently apart.
type WorkspaceService struct {
	workspaceRepo repositories.WorkspaceRepository
	draftRepo     repositories.DraftRepository
	activityRepo  repositories.ActivityRepository
	txManager     repositories.TransactionManager
	logger        *slog.Logger
}

// NewWorkspaceService creates a new workspace service.
func NewWorkspaceService(
	workspaceRepo repositories.WorkspaceRepository,
	draftRepo repositories.DraftRepository,
	activityRepo repositories.ActivityRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		draftRepo:     draftRepo,
		activityRepo:  activityRepo,
		txManager:     txManager,
		logger:        logger,
	}
}

// CreateWorkspaceRequest describes a new authoring session.
type CreateWorkspaceRequest struct {
	Title   string `json:"title"`
	Goal    string `json:"goal"`
	OwnerID string `json:"-"`
}

// CreateWorkspace creates the workspace together with its empty draft.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, req *CreateWorkspaceRequest) (*models.Workspace, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 255)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	workspace := &models.Workspace{
		Title:   req.Title,
		Goal:    req.Goal,
		Status:  models.WorkspaceStatusActive,
		OwnerID: req.OwnerID,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.workspaceRepo.Create(txCtx, workspace); err != nil {
			return err
		}

		draft := &models.Draft{
			WorkspaceID:     workspace.ID,
			Content:         map[string]interface{}{},
			Outline:         []models.DraftSection{},
			CurrentRevision: 1,
		}
		if err := s.draftRepo.Create(txCtx, draft); err != nil {
			return err
		}

		return s.activityRepo.Create(txCtx, &models.Activity{
			WorkspaceID: workspace.ID,
			Type:        models.ActivityWorkspaceCreated,
			Payload: map[string]interface{}{
				"title": workspace.Title,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return workspace, nil
}

// GetWorkspace returns one workspace by ID.
func (s *WorkspaceService) GetWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	return s.workspaceRepo.GetByID(ctx, id)
}

// ListWorkspaces returns workspaces, optionally scoped to an owner.
func (s *WorkspaceService) ListWorkspaces(ctx context.Context, ownerID string) ([]*models.Workspace, error) {
	return s.workspaceRepo.List(ctx, ownerID)
}

// UpdateWorkspaceRequest carries editable workspace fields.
type UpdateWorkspaceRequest struct {
	Title  *string `json:"title"`
	Goal   *string `json:"goal"`
	Status *string `json:"status"`
}

// UpdateWorkspace merges fields and enforces status transitions:
// active and paused swap freely, completed is terminal, and completion
// only happens through CompleteWorkspace or a publish.
func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, id string, req *UpdateWorkspaceRequest) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		next := *req.Status
		if !models.ValidWorkspaceStatus(next) {
			return nil, domain.Validationf("unknown workspace status %q", next)
		}
		if workspace.Status == models.WorkspaceStatusCompleted && next != models.WorkspaceStatusCompleted {
			return nil, fmt.Errorf("workspace %s is completed: %w", id, domain.ErrConflict)
		}
		if next == models.WorkspaceStatusCompleted && workspace.Status != models.WorkspaceStatusCompleted {
			return nil, domain.Validationf("use the complete or publish endpoints to finish a workspace")
		}
		workspace.Status = next
	}
	if req.Title != nil {
		workspace.Title = *req.Title
	}
	if req.Goal != nil {
		workspace.Goal = *req.Goal
	}

	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Create(ctx, &models.Activity{
		WorkspaceID: workspace.ID,
		Type:        models.ActivityWorkspaceUpdated,
		Payload: map[string]interface{}{
			"status": workspace.Status,
		},
	}); err != nil {
		s.logger.Warn("record workspace update failed", "workspace_id", id, "error", err)
	}

	return workspace, nil
}

// CompleteWorkspace explicitly finishes a workspace without publishing.
func (s *WorkspaceService) CompleteWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workspace.Status == models.WorkspaceStatusCompleted {
		return workspace, nil
	}

	workspace.Status = models.WorkspaceStatusCompleted
	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Create(ctx, &models.Activity{
		WorkspaceID: workspace.ID,
		Type:        models.ActivityWorkspaceUpdated,
		Payload: map[string]interface{}{
			"status": workspace.Status,
		},
	}); err != nil {
		s.logger.Warn("record workspace completion failed", "workspace_id", id, "error", err)
	}

	return workspace, nil
}

// DeleteWorkspace removes a workspace and everything hanging off it.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, id string) error {
	return s.workspaceRepo.Delete(ctx, id)
}

// ListActivities returns recent audit entries for a workspace.
func (s *WorkspaceService) ListActivities(ctx context.Context, workspaceID string, limit int) ([]*models.Activity, error) {
	if _, err := s.workspaceRepo.GetByID(ctx, workspaceID); err != nil {
		return nil, err
	}
	return s.activityRepo.ListByWorkspace(ctx, workspaceID, limit)
}
