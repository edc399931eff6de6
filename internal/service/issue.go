package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// IssueService is CRUD over published issues plus index upkeep.
type IssueService struct {
	issueRepo     repositories.IssueRepository
	searchService *SearchService
	logger        *slog.Logger
}

// NewIssueService creates a new issue service.
func NewIssueService(issueRepo repositories.IssueRepository, searchService *SearchService, logger *slog.Logger) *IssueService {
	return &IssueService{
		issueRepo:     issueRepo,
		searchService: searchService,
		logger:        logger,
	}
}

// CreateIssueRequest is an admin import of a fully-formed issue.
type CreateIssueRequest struct {
	Slug     string                 `json:"slug"`
	Title    string                 `json:"title"`
	Subtitle string                 `json:"subtitle"`
	Version  string                 `json:"version"`
	Tagline  string                 `json:"tagline"`
	Intro    string                 `json:"intro"`
	Sections []models.Section       `json:"sections"`
	Metadata map[string]interface{} `json:"metadata"`
}

// CreateIssue validates and stores a new issue and indexes it.
func (s *IssueService) CreateIssue(ctx context.Context, req *CreateIssueRequest) (*models.Issue, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Slug, validation.Required, validation.Length(1, 100), is.DNSName),
		validation.Field(&req.Title, validation.Required, validation.Length(1, 255)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	issue := &models.Issue{
		Slug:     req.Slug,
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Version:  req.Version,
		Tagline:  req.Tagline,
		Intro:    req.Intro,
		Sections: req.Sections,
		Metadata: req.Metadata,
	}
	if issue.Sections == nil {
		issue.Sections = []models.Section{}
	}

	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, err
	}

	if err := s.searchService.ReindexIssue(ctx, issue); err != nil {
		// The index is a rebuildable cache; a failed reindex is logged,
		// not surfaced as a failed create.
		s.logger.Warn("reindex after create failed", "slug", issue.Slug, "error", err)
	}

	return issue, nil
}

// GetIssue returns one issue by slug.
func (s *IssueService) GetIssue(ctx context.Context, slug string) (*models.Issue, error) {
	return s.issueRepo.GetBySlug(ctx, slug)
}

// ListIssues returns all issues, most recently published first.
func (s *IssueService) ListIssues(ctx context.Context) ([]*models.Issue, error) {
	return s.issueRepo.List(ctx)
}

// UpdateIssueRequest carries editable issue fields. The slug in the URL
// names the issue and is immutable.
type UpdateIssueRequest struct {
	Title    *string                 `json:"title"`
	Subtitle *string                 `json:"subtitle"`
	Version  *string                 `json:"version"`
	Tagline  *string                 `json:"tagline"`
	Intro    *string                 `json:"intro"`
	Sections *[]models.Section       `json:"sections"`
	Metadata *map[string]interface{} `json:"metadata"`
}

// UpdateIssue merges the provided fields and reindexes.
func (s *IssueService) UpdateIssue(ctx context.Context, slug string, req *UpdateIssueRequest) (*models.Issue, error) {
	issue, err := s.issueRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		issue.Title = *req.Title
	}
	if req.Subtitle != nil {
		issue.Subtitle = *req.Subtitle
	}
	if req.Version != nil {
		issue.Version = *req.Version
	}
	if req.Tagline != nil {
		issue.Tagline = *req.Tagline
	}
	if req.Intro != nil {
		issue.Intro = *req.Intro
	}
	if req.Sections != nil {
		issue.Sections = *req.Sections
	}
	if req.Metadata != nil {
		issue.Metadata = *req.Metadata
	}

	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, err
	}

	if err := s.searchService.ReindexIssue(ctx, issue); err != nil {
		s.logger.Warn("reindex after update failed", "slug", issue.Slug, "error", err)
	}

	return issue, nil
}

// DeleteIssue removes an issue and its index rows.
func (s *IssueService) DeleteIssue(ctx context.Context, slug string) error {
	if err := s.issueRepo.Delete(ctx, slug); err != nil {
		return err
	}
	if err := s.searchService.DropIssue(ctx, slug); err != nil {
		s.logger.Warn("drop index after delete failed", "slug", slug, "error", err)
	}
	return nil
}
