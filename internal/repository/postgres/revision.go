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

// PostgresRevisionRepository implements repositories.RevisionRepository.
type PostgresRevisionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewRevisionRepository creates a new revision repository.
func NewRevisionRepository(config *RepositoryConfig) repositories.RevisionRepository {
	return &PostgresRevisionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a snapshot. The number is assigned inside the statement
// (max existing number for the workspace, plus one) so two concurrent
// creates cannot be handed the same number.
func (r *PostgresRevisionRepository) Create(ctx context.Context, rev *models.Revision) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, draft_id, number, content, metadata)
		SELECT $1, $2, coalesce(max(number), 0) + 1, $3, $4
		FROM %s WHERE workspace_id = $1
		RETURNING id, number, created_at
	`, r.tables.Revisions, r.tables.Revisions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		rev.WorkspaceID,
		rev.DraftID,
		rev.Content,
		rev.Metadata,
	).Scan(&rev.ID, &rev.Number, &rev.CreatedAt)

	if err != nil {
		return fmt.Errorf("create revision: %w", err)
	}

	return nil
}

// ListByWorkspace retrieves all revisions, most recent number first.
func (r *PostgresRevisionRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Revision, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, draft_id, number, content, metadata, created_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY number DESC
	`, r.tables.Revisions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []*models.Revision
	for rows.Next() {
		var rev models.Revision
		if err := rows.Scan(
			&rev.ID,
			&rev.WorkspaceID,
			&rev.DraftID,
			&rev.Number,
			&rev.Content,
			&rev.Metadata,
			&rev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, &rev)
	}

	return revisions, rows.Err()
}

// GetByNumber retrieves one revision by its per-workspace number.
func (r *PostgresRevisionRepository) GetByNumber(ctx context.Context, workspaceID string, number int) (*models.Revision, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, draft_id, number, content, metadata, created_at
		FROM %s
		WHERE workspace_id = $1 AND number = $2
	`, r.tables.Revisions)

	var rev models.Revision
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, workspaceID, number).Scan(
		&rev.ID,
		&rev.WorkspaceID,
		&rev.DraftID,
		&rev.Number,
		&rev.Content,
		&rev.Metadata,
		&rev.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("revision %d for workspace %s: %w", number, workspaceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get revision: %w", err)
	}

	return &rev, nil
}
