package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldguide/internal/domain/repositories"
)

// RepositoryConfig holds the shared pieces every repository needs.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds the environment-prefixed table names.
type TableNames struct {
	Issues      string
	Workspaces  string
	Drafts      string
	Revisions   string
	Messages    string
	Suggestions string
	Activities  string
	Resources   string
	Bookmarks   string
	SearchIndex string
	Imports     string
	AdminUsers  string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Issues:      prefix + "issues",
		Workspaces:  prefix + "workspaces",
		Drafts:      prefix + "drafts",
		Revisions:   prefix + "revisions",
		Messages:    prefix + "messages",
		Suggestions: prefix + "suggestions",
		Activities:  prefix + "activities",
		Resources:   prefix + "workspace_resources",
		Bookmarks:   prefix + "bookmarks",
		SearchIndex: prefix + "search_index",
		Imports:     prefix + "content_imports",
		AdminUsers:  prefix + "admin_users",
	}
}

// CreateConnectionPool creates a pgx pool. When the connection goes
// through a transaction pooler (port 6543) prepared statements break, so
// cache_describe mode is selected there: extended protocol (needed for
// JSONB encoding of map[string]interface{}) without server-side prepared
// statements. An explicit default_query_exec_mode in the URL wins.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for pooler compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction from the context if one is
// present, otherwise the pool. Repositories call this on every query so
// they join service-level transactions transparently.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
