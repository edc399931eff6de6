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

// PostgresResourceRepository implements repositories.ResourceRepository.
type PostgresResourceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(config *RepositoryConfig) repositories.ResourceRepository {
	return &PostgresResourceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a workspace resource.
func (r *PostgresResourceRepository) Create(ctx context.Context, res *models.WorkspaceResource) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, name, type, content, mime_type, size, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		res.WorkspaceID,
		res.Name,
		res.Type,
		res.Content,
		res.MimeType,
		res.Size,
		res.Metadata,
	).Scan(&res.ID, &res.CreatedAt)

	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	return nil
}

// GetByID retrieves a resource by ID.
func (r *PostgresResourceRepository) GetByID(ctx context.Context, id string) (*models.WorkspaceResource, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, name, type, content, mime_type, size, metadata, created_at
		FROM %s WHERE id = $1
	`, r.tables.Resources)

	var res models.WorkspaceResource
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.WorkspaceID,
		&res.Name,
		&res.Type,
		&res.Content,
		&res.MimeType,
		&res.Size,
		&res.Metadata,
		&res.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}

	return &res, nil
}

// ListByWorkspace retrieves all resources for a workspace, newest first.
func (r *PostgresResourceRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.WorkspaceResource, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, name, type, content, mime_type, size, metadata, created_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.WorkspaceResource
	for rows.Next() {
		var res models.WorkspaceResource
		if err := rows.Scan(
			&res.ID,
			&res.WorkspaceID,
			&res.Name,
			&res.Type,
			&res.Content,
			&res.MimeType,
			&res.Size,
			&res.Metadata,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, &res)
	}

	return resources, rows.Err()
}

// Delete removes a resource.
func (r *PostgresResourceRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Resources)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
