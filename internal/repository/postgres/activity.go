package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// PostgresActivityRepository implements repositories.ActivityRepository.
// Rows are append-only; there is deliberately no update or delete.
type PostgresActivityRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(config *RepositoryConfig) repositories.ActivityRepository {
	return &PostgresActivityRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create appends an audit log entry.
func (r *PostgresActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Activities)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		a.WorkspaceID,
		a.Type,
		a.Payload,
	).Scan(&a.ID, &a.CreatedAt)

	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	return nil
}

// ListByWorkspace retrieves recent activity, newest first.
func (r *PostgresActivityRepository) ListByWorkspace(ctx context.Context, workspaceID string, limit int) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT id, workspace_id, type, payload, created_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, r.tables.Activities)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(
			&a.ID,
			&a.WorkspaceID,
			&a.Type,
			&a.Payload,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, &a)
	}

	return activities, rows.Err()
}
