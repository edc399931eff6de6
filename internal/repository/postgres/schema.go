package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the prefixed tables if they do not exist.
// Table names vary by environment prefix, so the DDL is rendered at
// startup rather than shipped as static migration files.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, t *TableNames) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			slug text NOT NULL UNIQUE,
			title text NOT NULL,
			subtitle text NOT NULL DEFAULT '',
			version text NOT NULL DEFAULT '',
			tagline text NOT NULL DEFAULT '',
			intro text NOT NULL DEFAULT '',
			sections jsonb NOT NULL DEFAULT '[]',
			metadata jsonb,
			published_at timestamptz,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`, t.Issues),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			title text NOT NULL,
			goal text NOT NULL DEFAULT '',
			status text NOT NULL DEFAULT 'active',
			owner_id text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`, t.Workspaces),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			workspace_id uuid NOT NULL UNIQUE REFERENCES %s(id) ON DELETE CASCADE,
			content jsonb NOT NULL DEFAULT '{}',
			outline jsonb NOT NULL DEFAULT '[]',
			current_revision int NOT NULL DEFAULT 1,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`, t.Drafts, t.Workspaces),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			workspace_id uuid NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			draft_id uuid NOT NULL,
			number int NOT NULL,
			content jsonb NOT NULL DEFAULT '{}',
			metadata jsonb,
			created_at timestamptz NOT NULL DEFAULT now(),
			UNIQUE (workspace_id, number)
		)`, t.Revisions, t.Workspaces),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			workspace_id uuid NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			role text NOT NULL,
			content text NOT NULL,
			section_path text,
			metadata jsonb,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, t.Messages, t.Workspaces),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			workspace_id uuid NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			draft_id uuid NOT NULL,
			section_path text,
			diff jsonb NOT NULL DEFAULT '[]',
			rationale text NOT NULL DEFAULT '',
			status text NOT NULL DEFAULT 'proposed',
			created_at timestamptz NOT NULL DEFAULT now()
		)`, t.Suggestions, t.Workspaces),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			workspace_id uuid NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			type text NOT NULL,
			payload jsonb,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, t.Activities, t.Workspaces),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			workspace_id uuid NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			name text NOT NULL,
			type text NOT NULL,
			content text NOT NULL DEFAULT '',
			mime_type text NOT NULL DEFAULT '',
			size bigint NOT NULL DEFAULT 0,
			metadata jsonb,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, t.Resources, t.Workspaces),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id text NOT NULL,
			issue_slug text NOT NULL,
			bookmark_type text NOT NULL,
			section_id text NOT NULL DEFAULT '',
			pattern_name text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL DEFAULT now(),
			UNIQUE (user_id, issue_slug, bookmark_type, section_id, pattern_name)
		)`, t.Bookmarks),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			issue_slug text NOT NULL,
			content_type text NOT NULL,
			section_id text NOT NULL DEFAULT '',
			pattern_name text NOT NULL DEFAULT '',
			title text NOT NULL DEFAULT '',
			body text NOT NULL DEFAULT ''
		)`, t.SearchIndex),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_slug_idx ON %s (issue_slug)`, t.SearchIndex, t.SearchIndex),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text NOT NULL DEFAULT '',
			raw_content text NOT NULL,
			status text NOT NULL DEFAULT 'pending',
			created_at timestamptz NOT NULL DEFAULT now()
		)`, t.Imports),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			email text NOT NULL UNIQUE,
			password_hash text NOT NULL,
			display_name text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL DEFAULT now()
		)`, t.AdminUsers),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
