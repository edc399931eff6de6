package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// PostgresDraftRepository implements repositories.DraftRepository.
type PostgresDraftRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDraftRepository creates a new draft repository.
func NewDraftRepository(config *RepositoryConfig) repositories.DraftRepository {
	return &PostgresDraftRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts the draft for a workspace. workspace_id is unique, so a
// second create for the same workspace fails with a conflict.
func (r *PostgresDraftRepository) Create(ctx context.Context, d *models.Draft) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, content, outline, current_revision)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Drafts)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		d.WorkspaceID,
		d.Content,
		d.Outline,
		d.CurrentRevision,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("workspace %s already has a draft", d.WorkspaceID),
				ResourceType: "draft",
				ResourceID:   d.WorkspaceID,
			}
		}
		return fmt.Errorf("create draft: %w", err)
	}

	return nil
}

// GetByWorkspace retrieves the draft owned by a workspace. Absence is a
// normal outcome right after workspace creation.
func (r *PostgresDraftRepository) GetByWorkspace(ctx context.Context, workspaceID string) (*models.Draft, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, content, outline, current_revision, created_at, updated_at
		FROM %s WHERE workspace_id = $1
	`, r.tables.Drafts)

	var d models.Draft
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, workspaceID).Scan(
		&d.ID,
		&d.WorkspaceID,
		&d.Content,
		&d.Outline,
		&d.CurrentRevision,
		&d.CreatedAt,
		&d.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("draft for workspace %s: %w", workspaceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	return &d, nil
}

// Update persists the draft's content, outline and current revision.
// Last write wins; the draft is single-editor by contract.
func (r *PostgresDraftRepository) Update(ctx context.Context, d *models.Draft) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $2, outline = $3, current_revision = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Drafts)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		d.ID,
		d.Content,
		d.Outline,
		d.CurrentRevision,
	).Scan(&d.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("draft %s: %w", d.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update draft: %w", err)
	}

	return nil
}
