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

// PostgresBookmarkRepository implements repositories.BookmarkRepository.
type PostgresBookmarkRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewBookmarkRepository creates a new bookmark repository.
func NewBookmarkRepository(config *RepositoryConfig) repositories.BookmarkRepository {
	return &PostgresBookmarkRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a bookmark. The (user, slug, type, section, pattern)
// composite is unique; duplicates fail with a conflict.
func (r *PostgresBookmarkRepository) Create(ctx context.Context, b *models.Bookmark) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, issue_slug, bookmark_type, section_id, pattern_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Bookmarks)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		b.UserID,
		b.IssueSlug,
		b.BookmarkType,
		b.SectionID,
		b.PatternName,
	).Scan(&b.ID, &b.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "bookmark already exists",
				ResourceType: "bookmark",
			}
		}
		return fmt.Errorf("create bookmark: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's bookmarks, newest first.
func (r *PostgresBookmarkRepository) ListByUser(ctx context.Context, userID string) ([]*models.Bookmark, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, issue_slug, bookmark_type, section_id, pattern_name, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.tables.Bookmarks)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []*models.Bookmark
	for rows.Next() {
		var b models.Bookmark
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.IssueSlug,
			&b.BookmarkType,
			&b.SectionID,
			&b.PatternName,
			&b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, &b)
	}

	return bookmarks, rows.Err()
}

// Delete removes a bookmark, scoped to its owner.
func (r *PostgresBookmarkRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Bookmarks)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bookmark %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Exists checks whether the exact bookmark is already present.
func (r *PostgresBookmarkRepository) Exists(ctx context.Context, b *models.Bookmark) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE user_id = $1 AND issue_slug = $2 AND bookmark_type = $3
			  AND section_id = $4 AND pattern_name = $5
		)
	`, r.tables.Bookmarks)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		b.UserID,
		b.IssueSlug,
		b.BookmarkType,
		b.SectionID,
		b.PatternName,
	).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}

	return exists, nil
}
