package repositories

import (
	"context"

	"fieldguide/internal/domain/models"
)

// WorkspaceRepository persists authoring workspaces.
type WorkspaceRepository interface {
	Create(ctx context.Context, ws *models.Workspace) error
	GetByID(ctx context.Context, id string) (*models.Workspace, error)
	List(ctx context.Context, ownerID string) ([]*models.Workspace, error)
	Update(ctx context.Context, ws *models.Workspace) error
	Delete(ctx context.Context, id string) error
}

// DraftRepository persists the single draft of each workspace.
type DraftRepository interface {
	Create(ctx context.Context, d *models.Draft) error
	GetByWorkspace(ctx context.Context, workspaceID string) (*models.Draft, error)
	// Update persists content, outline and current_revision, bumping
	// updated_at. Last write wins; drafts are single-editor by contract.
	Update(ctx context.Context, d *models.Draft) error
}

// RevisionRepository persists immutable draft snapshots. Numbers are
// assigned inside the insert statement (coalesce(max(number),0)+1 scoped
// to the workspace) so concurrent creates cannot collide.
type RevisionRepository interface {
	Create(ctx context.Context, r *models.Revision) error
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Revision, error)
	GetByNumber(ctx context.Context, workspaceID string, number int) (*models.Revision, error)
}

// MessageRepository persists conversation turns, append-only.
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Message, error)
}

// SuggestionRepository persists proposed edits.
type SuggestionRepository interface {
	Create(ctx context.Context, s *models.Suggestion) error
	GetByID(ctx context.Context, id string) (*models.Suggestion, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Suggestion, error)
	// UpdateStatus moves a suggestion out of proposed. It must fail with
	// ErrConflict if the row is already terminal.
	UpdateStatus(ctx context.Context, id, status string) error
}

// ActivityRepository persists the append-only audit log.
type ActivityRepository interface {
	Create(ctx context.Context, a *models.Activity) error
	ListByWorkspace(ctx context.Context, workspaceID string, limit int) ([]*models.Activity, error)
}

// ResourceRepository persists workspace attachments.
type ResourceRepository interface {
	Create(ctx context.Context, r *models.WorkspaceResource) error
	GetByID(ctx context.Context, id string) (*models.WorkspaceResource, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.WorkspaceResource, error)
	Delete(ctx context.Context, id string) error
}
