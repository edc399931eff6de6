package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
	"fieldguide/internal/objstore"
)

// ResourceService manages workspace attachments. Text and URL resources
// live entirely in postgres; file resources stream their bytes to the
// object store and keep only the object key in the row.
type ResourceService struct {
	resourceRepo  repositories.ResourceRepository
	workspaceRepo repositories.WorkspaceRepository
	activityRepo  repositories.ActivityRepository
	store         *objstore.Store
	logger        *slog.Logger
}

// NewResourceService creates a new resource service. store may be nil in
// deployments without an object store; file uploads then fail with a
// validation error.
func NewResourceService(
	resourceRepo repositories.ResourceRepository,
	workspaceRepo repositories.WorkspaceRepository,
	activityRepo repositories.ActivityRepository,
	store *objstore.Store,
	logger *slog.Logger,
) *ResourceService {
	return &ResourceService{
		resourceRepo:  resourceRepo,
		workspaceRepo: workspaceRepo,
		activityRepo:  activityRepo,
		store:         store,
		logger:        logger,
	}
}

// CreateResourceRequest adds a text or url resource.
type CreateResourceRequest struct {
	Name     string                 `json:"name"`
	Type     string                 `json:"type"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// CreateResource attaches a text or url resource to a workspace.
func (s *ResourceService) CreateResource(ctx context.Context, workspaceID string, req *CreateResourceRequest) (*models.WorkspaceResource, error) {
	if req.Name == "" {
		return nil, domain.Validationf("resource name is required")
	}
	if req.Type != models.ResourceTypeText && req.Type != models.ResourceTypeURL {
		return nil, domain.Validationf("resource type must be text or url, got %q", req.Type)
	}
	if _, err := s.workspaceRepo.GetByID(ctx, workspaceID); err != nil {
		return nil, err
	}

	resource := &models.WorkspaceResource{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Type:        req.Type,
		Content:     req.Content,
		Size:        int64(len(req.Content)),
		Metadata:    req.Metadata,
	}
	if err := s.resourceRepo.Create(ctx, resource); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, workspaceID, models.ActivityResourceAdded, map[string]interface{}{
		"resource_id": resource.ID,
		"name":        resource.Name,
		"type":        resource.Type,
	})

	return resource, nil
}

// UploadFile stores the file bytes and records a file resource pointing
// at the stored object.
func (s *ResourceService) UploadFile(ctx context.Context, workspaceID, filename, contentType string, size int64, body io.Reader) (*models.WorkspaceResource, error) {
	if s.store == nil {
		return nil, domain.Validationf("file uploads are not enabled")
	}
	if filename == "" {
		return nil, domain.Validationf("filename is required")
	}
	if _, err := s.workspaceRepo.GetByID(ctx, workspaceID); err != nil {
		return nil, err
	}

	key, err := s.store.Put(ctx, workspaceID, filename, contentType, size, body)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	resource := &models.WorkspaceResource{
		WorkspaceID: workspaceID,
		Name:        filename,
		Type:        models.ResourceTypeFile,
		Content:     key,
		MimeType:    contentType,
		Size:        size,
	}
	if err := s.resourceRepo.Create(ctx, resource); err != nil {
		// The row failed; clean up the orphaned object.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete orphaned object", "key", key, "error", delErr)
		}
		return nil, err
	}

	s.recordActivity(ctx, workspaceID, models.ActivityResourceAdded, map[string]interface{}{
		"resource_id": resource.ID,
		"name":        resource.Name,
		"type":        resource.Type,
		"size":        size,
	})

	return resource, nil
}

// ListResources returns all resources attached to the workspace.
func (s *ResourceService) ListResources(ctx context.Context, workspaceID string) ([]*models.WorkspaceResource, error) {
	return s.resourceRepo.ListByWorkspace(ctx, workspaceID)
}

// OpenFile returns the stored bytes of a file resource.
func (s *ResourceService) OpenFile(ctx context.Context, id string) (*models.WorkspaceResource, io.ReadCloser, error) {
	resource, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if resource.Type != models.ResourceTypeFile {
		return nil, nil, domain.Validationf("resource %s is not a file", id)
	}
	if s.store == nil {
		return nil, nil, domain.Validationf("file downloads are not enabled")
	}

	rc, err := s.store.Get(ctx, resource.Content)
	if err != nil {
		return nil, nil, err
	}
	return resource, rc, nil
}

// DeleteResource removes the row and, for file resources, the stored
// object.
func (s *ResourceService) DeleteResource(ctx context.Context, id string) error {
	resource, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.resourceRepo.Delete(ctx, id); err != nil {
		return err
	}
	if resource.Type == models.ResourceTypeFile && s.store != nil {
		if err := s.store.Delete(ctx, resource.Content); err != nil {
			s.logger.Warn("failed to delete stored object", "key", resource.Content, "error", err)
		}
	}
	return nil
}

func (s *ResourceService) recordActivity(ctx context.Context, workspaceID, activityType string, metadata map[string]interface{}) {
	activity := &models.Activity{
		WorkspaceID: workspaceID,
		Type:        activityType,
		Payload:     metadata,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", "workspace_id", workspaceID, "type", activityType, "error", err)
	}
}
