package service

import (
	"context"
	"log/slog"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
	"fieldguide/internal/markdown"
)

// ContentImportService stores raw text an admin pasted or uploaded so it
// can later be transformed into a structured issue.
type ContentImportService struct {
	importRepo repositories.ContentImportRepository
	logger     *slog.Logger
}

// NewContentImportService creates a new content import service.
func NewContentImportService(importRepo repositories.ContentImportRepository, logger *slog.Logger) *ContentImportService {
	return &ContentImportService{
		importRepo: importRepo,
		logger:     logger,
	}
}

// CreateImportRequest carries the raw material.
type CreateImportRequest struct {
	Name       string `json:"name"`
	RawContent string `json:"rawContent"`
}

// CreateImport stores a new pending import. A missing name is derived
// from the content's frontmatter title or first heading.
func (s *ContentImportService) CreateImport(ctx context.Context, req *CreateImportRequest) (*models.ContentImport, error) {
	if req.RawContent == "" {
		return nil, domain.Validationf("import content is required")
	}
	name := req.Name
	if name == "" {
		name = markdown.Title(req.RawContent)
	}
	if name == "" {
		return nil, domain.Validationf("import name is required when the content has no title")
	}

	imp := &models.ContentImport{
		Name:       name,
		RawContent: req.RawContent,
		Status:     models.ImportStatusPending,
	}
	if err := s.importRepo.Create(ctx, imp); err != nil {
		return nil, err
	}

	s.logger.Info("import created",
		"import_id", imp.ID,
		"name", imp.Name,
		"words", markdown.CountWords(req.RawContent),
	)
	return imp, nil
}

// ListImports returns all imports, newest first.
func (s *ContentImportService) ListImports(ctx context.Context) ([]*models.ContentImport, error) {
	return s.importRepo.List(ctx)
}

// MarkTransformed records that an import has been run through the
// transformer. Failures are logged, not surfaced; the transform output
// already reached the admin.
func (s *ContentImportService) MarkTransformed(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.importRepo.UpdateStatus(ctx, id, models.ImportStatusTransformed); err != nil {
		s.logger.Warn("failed to mark import transformed", "import_id", id, "error", err)
	}
}
