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

// PostgresContentImportRepository implements repositories.ContentImportRepository.
type PostgresContentImportRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewContentImportRepository creates a new content import repository.
func NewContentImportRepository(config *RepositoryConfig) repositories.ContentImportRepository {
	return &PostgresContentImportRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a content import.
func (r *PostgresContentImportRepository) Create(ctx context.Context, imp *models.ContentImport) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, raw_content, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Imports)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		imp.Name,
		imp.RawContent,
		imp.Status,
	).Scan(&imp.ID, &imp.CreatedAt)

	if err != nil {
		return fmt.Errorf("create content import: %w", err)
	}

	return nil
}

// List retrieves all imports, newest first.
func (r *PostgresContentImportRepository) List(ctx context.Context) ([]*models.ContentImport, error) {
	query := fmt.Sprintf(`
		SELECT id, name, raw_content, status, created_at
		FROM %s ORDER BY created_at DESC
	`, r.tables.Imports)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list content imports: %w", err)
	}
	defer rows.Close()

	var imports []*models.ContentImport
	for rows.Next() {
		var imp models.ContentImport
		if err := rows.Scan(
			&imp.ID,
			&imp.Name,
			&imp.RawContent,
			&imp.Status,
			&imp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan content import: %w", err)
		}
		imports = append(imports, &imp)
	}

	return imports, rows.Err()
}

// UpdateStatus records a transform outcome.
func (r *PostgresContentImportRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $2 WHERE id = $1`, r.tables.Imports)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update content import: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("content import %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
