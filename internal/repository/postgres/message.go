package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// PostgresMessageRepository implements repositories.MessageRepository.
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(config *RepositoryConfig) repositories.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create appends a conversation turn.
func (r *PostgresMessageRepository) Create(ctx context.Context, m *models.Message) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, role, content, section_path, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		m.WorkspaceID,
		m.Role,
		m.Content,
		m.SectionPath,
		m.Metadata,
	).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// ListByWorkspace retrieves all turns in creation order, oldest first,
// the order conversations are replayed in.
func (r *PostgresMessageRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Message, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, role, content, section_path, metadata, created_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID,
			&m.WorkspaceID,
			&m.Role,
			&m.Content,
			&m.SectionPath,
			&m.Metadata,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}
