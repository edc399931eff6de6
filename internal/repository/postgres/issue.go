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

// PostgresIssueRepository implements repositories.IssueRepository.
type PostgresIssueRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewIssueRepository creates a new issue repository.
func NewIssueRepository(config *RepositoryConfig) repositories.IssueRepository {
	return &PostgresIssueRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const issueColumns = "id, slug, title, subtitle, version, tagline, intro, sections, metadata, published_at, created_at, updated_at"

// Create inserts a new issue. The slug is unique; a collision returns a
// ConflictError carrying the existing slug.
func (r *PostgresIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (slug, title, subtitle, version, tagline, intro, sections, metadata, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Issues)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		issue.Slug,
		issue.Title,
		issue.Subtitle,
		issue.Version,
		issue.Tagline,
		issue.Intro,
		issue.Sections,
		issue.Metadata,
		issue.PublishedAt,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("issue with slug '%s' already exists", issue.Slug),
				ResourceType: "issue",
				ResourceID:   issue.Slug,
			}
		}
		return fmt.Errorf("create issue: %w", err)
	}

	return nil
}

// GetBySlug retrieves an issue by its slug.
func (r *PostgresIssueRepository) GetBySlug(ctx context.Context, slug string) (*models.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, issueColumns, r.tables.Issues)

	var issue models.Issue
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, slug).Scan(
		&issue.ID,
		&issue.Slug,
		&issue.Title,
		&issue.Subtitle,
		&issue.Version,
		&issue.Tagline,
		&issue.Intro,
		&issue.Sections,
		&issue.Metadata,
		&issue.PublishedAt,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("issue %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get issue: %w", err)
	}

	return &issue, nil
}

// List retrieves all issues, most recently published first.
func (r *PostgresIssueRepository) List(ctx context.Context) ([]*models.Issue, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY published_at DESC NULLS LAST, created_at DESC
	`, issueColumns, r.tables.Issues)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		var issue models.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.Slug,
			&issue.Title,
			&issue.Subtitle,
			&issue.Version,
			&issue.Tagline,
			&issue.Intro,
			&issue.Sections,
			&issue.Metadata,
			&issue.PublishedAt,
			&issue.CreatedAt,
			&issue.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, &issue)
	}

	return issues, rows.Err()
}

// Update persists edits to an issue. The slug itself is immutable and is
// the lookup key.
func (r *PostgresIssueRepository) Update(ctx context.Context, issue *models.Issue) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, subtitle = $3, version = $4, tagline = $5, intro = $6,
		    sections = $7, metadata = $8, published_at = $9, updated_at = now()
		WHERE slug = $1
		RETURNING updated_at
	`, r.tables.Issues)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		issue.Slug,
		issue.Title,
		issue.Subtitle,
		issue.Version,
		issue.Tagline,
		issue.Intro,
		issue.Sections,
		issue.Metadata,
		issue.PublishedAt,
	).Scan(&issue.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("issue %s: %w", issue.Slug, domain.ErrNotFound)
		}
		return fmt.Errorf("update issue: %w", err)
	}

	return nil
}

// Delete removes an issue by slug.
func (r *PostgresIssueRepository) Delete(ctx context.Context, slug string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE slug = $1`, r.tables.Issues)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, slug)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("issue %s: %w", slug, domain.ErrNotFound)
	}

	return nil
}
