package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// BookmarkService is reader-side bookmark CRUD.
type BookmarkService struct {
	bookmarkRepo repositories.BookmarkRepository
	logger       *slog.Logger
}

// NewBookmarkService creates a new bookmark service.
func NewBookmarkService(bookmarkRepo repositories.BookmarkRepository, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{
		bookmarkRepo: bookmarkRepo,
		logger:       logger,
	}
}

// CreateBookmarkRequest identifies what the reader is saving.
type CreateBookmarkRequest struct {
	UserID       string `json:"userId"`
	IssueSlug    string `json:"issueSlug"`
	BookmarkType string `json:"bookmarkType"`
	SectionID    string `json:"sectionId"`
	PatternName  string `json:"patternName"`
}

// CreateBookmark stores a bookmark; an existing identical bookmark is a
// conflict.
func (s *BookmarkService) CreateBookmark(ctx context.Context, req *CreateBookmarkRequest) (*models.Bookmark, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.IssueSlug, validation.Required),
		validation.Field(&req.BookmarkType, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	bookmark := &models.Bookmark{
		UserID:       req.UserID,
		IssueSlug:    req.IssueSlug,
		BookmarkType: req.BookmarkType,
		SectionID:    req.SectionID,
		PatternName:  req.PatternName,
	}
	if err := s.bookmarkRepo.Create(ctx, bookmark); err != nil {
		return nil, err
	}

	return bookmark, nil
}

// ListBookmarks returns a user's bookmarks, newest first.
func (s *BookmarkService) ListBookmarks(ctx context.Context, userID string) ([]*models.Bookmark, error) {
	return s.bookmarkRepo.ListByUser(ctx, userID)
}

// DeleteBookmark removes a bookmark owned by the user.
func (s *BookmarkService) DeleteBookmark(ctx context.Context, id, userID string) error {
	return s.bookmarkRepo.Delete(ctx, id, userID)
}

// CheckBookmark reports whether the exact bookmark already exists.
func (s *BookmarkService) CheckBookmark(ctx context.Context, req *CreateBookmarkRequest) (bool, error) {
	return s.bookmarkRepo.Exists(ctx, &models.Bookmark{
		UserID:       req.UserID,
		IssueSlug:    req.IssueSlug,
		BookmarkType: req.BookmarkType,
		SectionID:    req.SectionID,
		PatternName:  req.PatternName,
	})
}
