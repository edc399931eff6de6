package repositories

import (
	"context"

	"fieldguide/internal/domain/models"
)

// IssueRepository persists published issues.
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetBySlug(ctx context.Context, slug string) (*models.Issue, error)
	List(ctx context.Context) ([]*models.Issue, error)
	Update(ctx context.Context, issue *models.Issue) error
	Delete(ctx context.Context, slug string) error
}

// SearchRepository persists and queries the denormalized search index.
type SearchRepository interface {
	// ReplaceForIssue rebuilds all index rows for one issue slug.
	ReplaceForIssue(ctx context.Context, slug string, entries []models.SearchEntry) error
	DeleteForIssue(ctx context.Context, slug string) error
	// Match returns rows whose title or body contain any of the terms,
	// optionally restricted to one issue and/or one content type.
	Match(ctx context.Context, terms []string, issueSlug, contentType string, limit int) ([]models.SearchEntry, error)
	// Names returns distinct pattern and section names matching q.
	Names(ctx context.Context, q string, limit int) ([]string, error)
}

// BookmarkRepository persists reader bookmarks.
type BookmarkRepository interface {
	Create(ctx context.Context, b *models.Bookmark) error
	ListByUser(ctx context.Context, userID string) ([]*models.Bookmark, error)
	Delete(ctx context.Context, id, userID string) error
	Exists(ctx context.Context, b *models.Bookmark) (bool, error)
}

// ContentImportRepository persists admin content imports.
type ContentImportRepository interface {
	Create(ctx context.Context, imp *models.ContentImport) error
	List(ctx context.Context) ([]*models.ContentImport, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// AdminUserRepository looks up admin accounts for login.
type AdminUserRepository interface {
	Create(ctx context.Context, u *models.AdminUser) error
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
