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

// PostgresAdminUserRepository implements repositories.AdminUserRepository.
type PostgresAdminUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAdminUserRepository creates a new admin user repository.
func NewAdminUserRepository(config *RepositoryConfig) repositories.AdminUserRepository {
	return &PostgresAdminUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts an admin account.
func (r *PostgresAdminUserRepository) Create(ctx context.Context, u *models.AdminUser) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.AdminUsers)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
	).Scan(&u.ID, &u.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("admin user %s already exists", u.Email),
				ResourceType: "admin_user",
				ResourceID:   u.Email,
			}
		}
		return fmt.Errorf("create admin user: %w", err)
	}

	return nil
}

// GetByEmail retrieves an admin account for login.
func (r *PostgresAdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, display_name, created_at
		FROM %s WHERE email = $1
	`, r.tables.AdminUsers)

	var u models.AdminUser
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("admin user %s: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get admin user: %w", err)
	}

	return &u, nil
}
