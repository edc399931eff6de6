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

// PostgresWorkspaceRepository implements repositories.WorkspaceRepository.
type PostgresWorkspaceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewWorkspaceRepository creates a new workspace repository.
func NewWorkspaceRepository(config *RepositoryConfig) repositories.WorkspaceRepository {
	return &PostgresWorkspaceRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new workspace.
func (r *PostgresWorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, goal, status, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		ws.Title,
		ws.Goal,
		ws.Status,
		ws.OwnerID,
	).Scan(&ws.ID, &ws.CreatedAt, &ws.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	return nil
}

// GetByID retrieves a workspace by ID.
func (r *PostgresWorkspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, title, goal, status, owner_id, created_at, updated_at
		FROM %s WHERE id = $1
	`, r.tables.Workspaces)

	var ws models.Workspace
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&ws.ID,
		&ws.Title,
		&ws.Goal,
		&ws.Status,
		&ws.OwnerID,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	return &ws, nil
}

// List retrieves all workspaces, optionally filtered by owner, most
// recently updated first.
func (r *PostgresWorkspaceRepository) List(ctx context.Context, ownerID string) ([]*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, title, goal, status, owner_id, created_at, updated_at
		FROM %s
	`, r.tables.Workspaces)
	args := []interface{}{}

	if ownerID != "" {
		query += " WHERE owner_id = $1"
		args = append(args, ownerID)
	}
	query += " ORDER BY updated_at DESC"

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []*models.Workspace
	for rows.Next() {
		var ws models.Workspace
		if err := rows.Scan(
			&ws.ID,
			&ws.Title,
			&ws.Goal,
			&ws.Status,
			&ws.OwnerID,
			&ws.CreatedAt,
			&ws.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, &ws)
	}

	return workspaces, rows.Err()
}

// Update persists title, goal and status edits.
func (r *PostgresWorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, goal = $3, status = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		ws.ID,
		ws.Title,
		ws.Goal,
		ws.Status,
	).Scan(&ws.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("workspace %s: %w", ws.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update workspace: %w", err)
	}

	return nil
}

// Delete removes a workspace and, via FK cascade, its draft, revisions,
// messages, suggestions, activities and resources.
func (r *PostgresWorkspaceRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
