package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// PostgresSearchRepository implements repositories.SearchRepository. The
// index table is a rebuildable cache over published issues; scoring is
// done in the search service, this layer only matches keywords.
type PostgresSearchRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSearchRepository creates a new search repository.
func NewSearchRepository(config *RepositoryConfig) repositories.SearchRepository {
	return &PostgresSearchRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ReplaceForIssue rebuilds all index rows for one slug in a single
// delete+insert pass.
func (r *PostgresSearchRepository) ReplaceForIssue(ctx context.Context, slug string, entries []models.SearchEntry) error {
	executor := GetExecutor(ctx, r.pool)

	if _, err := executor.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE issue_slug = $1`, r.tables.SearchIndex), slug); err != nil {
		return fmt.Errorf("clear search index: %w", err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (issue_slug, content_type, section_id, pattern_name, title, body)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.SearchIndex)

	for _, e := range entries {
		if _, err := executor.Exec(ctx, insert,
			e.IssueSlug,
			e.ContentType,
			e.SectionID,
			e.PatternName,
			e.Title,
			e.Body,
		); err != nil {
			return fmt.Errorf("index search entry: %w", err)
		}
	}

	return nil
}

// DeleteForIssue drops all index rows for a slug.
func (r *PostgresSearchRepository) DeleteForIssue(ctx context.Context, slug string) error {
	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE issue_slug = $1`, r.tables.SearchIndex), slug); err != nil {
		return fmt.Errorf("delete search entries: %w", err)
	}
	return nil
}

// Match returns rows whose title or body contain any of the terms,
// case-insensitive. Scoring and deduplication happen in the service.
func (r *PostgresSearchRepository) Match(ctx context.Context, terms []string, issueSlug, contentType string, limit int) ([]models.SearchEntry, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	var conds []string
	var args []interface{}
	for _, term := range terms {
		args = append(args, "%"+term+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR body ILIKE $%d OR pattern_name ILIKE $%d)", n, n, n))
	}

	query := fmt.Sprintf(`
		SELECT id, issue_slug, content_type, section_id, pattern_name, title, body
		FROM %s
		WHERE (%s)
	`, r.tables.SearchIndex, strings.Join(conds, " OR "))

	if issueSlug != "" {
		args = append(args, issueSlug)
		query += fmt.Sprintf(" AND issue_slug = $%d", len(args))
	}
	if contentType != "" {
		args = append(args, contentType)
		query += fmt.Sprintf(" AND content_type = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("match search entries: %w", err)
	}
	defer rows.Close()

	var entries []models.SearchEntry
	for rows.Next() {
		var e models.SearchEntry
		if err := rows.Scan(
			&e.ID,
			&e.IssueSlug,
			&e.ContentType,
			&e.SectionID,
			&e.PatternName,
			&e.Title,
			&e.Body,
		); err != nil {
			return nil, fmt.Errorf("scan search entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Names returns distinct pattern and section names matching q as a
// prefix or substring, prefix matches first.
func (r *PostgresSearchRepository) Names(ctx context.Context, q string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT ON (lower(name)) name, starts_with
		FROM (
			SELECT pattern_name AS name, pattern_name ILIKE $1 AS starts_with
			FROM %s WHERE pattern_name <> '' AND pattern_name ILIKE $2
			UNION ALL
			SELECT title AS name, title ILIKE $1 AS starts_with
			FROM %s WHERE content_type = 'section' AND title ILIKE $2
		) candidates
		ORDER BY lower(name), starts_with DESC
	`, r.tables.SearchIndex, r.tables.SearchIndex)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, q+"%", "%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("search names: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		name       string
		startsWith bool
	}
	var all []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.name, &c.startsWith); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		all = append(all, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Prefix matches ahead of substring matches, stable within groups.
	var names []string
	for _, c := range all {
		if c.startsWith {
			names = append(names, c.name)
		}
	}
	for _, c := range all {
		if !c.startsWith {
			names = append(names, c.name)
		}
	}
	if len(names) > limit {
		names = names[:limit]
	}

	return names, nil
}
