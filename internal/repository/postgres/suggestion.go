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

// PostgresSuggestionRepository implements repositories.SuggestionRepository.
type PostgresSuggestionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSuggestionRepository creates a new suggestion repository.
func NewSuggestionRepository(config *RepositoryConfig) repositories.SuggestionRepository {
	return &PostgresSuggestionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a proposed suggestion.
func (r *PostgresSuggestionRepository) Create(ctx context.Context, s *models.Suggestion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, draft_id, section_path, diff, rationale, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Suggestions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		s.WorkspaceID,
		s.DraftID,
		s.SectionPath,
		s.Diff,
		s.Rationale,
		s.Status,
	).Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		return fmt.Errorf("create suggestion: %w", err)
	}

	return nil
}

// GetByID retrieves a suggestion by ID.
func (r *PostgresSuggestionRepository) GetByID(ctx context.Context, id string) (*models.Suggestion, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, draft_id, section_path, diff, rationale, status, created_at
		FROM %s WHERE id = $1
	`, r.tables.Suggestions)

	var s models.Suggestion
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.WorkspaceID,
		&s.DraftID,
		&s.SectionPath,
		&s.Diff,
		&s.Rationale,
		&s.Status,
		&s.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get suggestion: %w", err)
	}

	return &s, nil
}

// ListByWorkspace retrieves all suggestions, newest first.
func (r *PostgresSuggestionRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*models.Suggestion, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, draft_id, section_path, diff, rationale, status, created_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`, r.tables.Suggestions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []*models.Suggestion
	for rows.Next() {
		var s models.Suggestion
		if err := rows.Scan(
			&s.ID,
			&s.WorkspaceID,
			&s.DraftID,
			&s.SectionPath,
			&s.Diff,
			&s.Rationale,
			&s.Status,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, &s)
	}

	return suggestions, rows.Err()
}

// UpdateStatus moves a suggestion out of proposed. The WHERE clause only
// matches proposed rows, so a second transition hits zero rows and the
// terminal state is preserved.
func (r *PostgresSuggestionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = $2
		WHERE id = $1 AND status = $3
	`, r.tables.Suggestions)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, status, models.SuggestionStatusProposed)
	if err != nil {
		return fmt.Errorf("update suggestion status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or it already left proposed.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("suggestion %s is no longer proposed: %w", id, domain.ErrConflict)
	}

	return nil
}
