package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// SectionField is the set of draft section fields that can be edited in
// place. Edits are typed and section-id addressed; there are no string
// paths into the outline.
type SectionField string

const (
	SectionFieldTitle   SectionField = "title"
	SectionFieldContent SectionField = "content"
)

// DraftService is the outline engine: it owns the nested section tree
// that is the unit of collaborative editing.
type DraftService struct {
	draftRepo    repositories.DraftRepository
	activityRepo repositories.ActivityRepository
	logger       *slog.Logger
}

// NewDraftService creates a new draft service.
func NewDraftService(
	draftRepo repositories.DraftRepository,
	activityRepo repositories.ActivityRepository,
	logger *slog.Logger,
) *DraftService {
	return &DraftService{
		draftRepo:    draftRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// GetDraft returns the workspace's draft. ErrNotFound is a normal
// outcome for a workspace that was just created.
func (s *DraftService) GetDraft(ctx context.Context, workspaceID string) (*models.Draft, error) {
	return s.draftRepo.GetByWorkspace(ctx, workspaceID)
}

// UpdateDraftRequest carries the fields to merge into the draft. Nil
// fields are left untouched.
type UpdateDraftRequest struct {
	Content *map[string]interface{} `json:"content"`
	Outline *[]models.DraftSection  `json:"outline"`
}

// UpdateDraft merges the provided fields and bumps updated_at. It does
// NOT create a revision; callers decide when to snapshot. The call is
// idempotent, so clients can save on a debounce timer at any frequency.
func (s *DraftService) UpdateDraft(ctx context.Context, workspaceID string, req *UpdateDraftRequest) (*models.Draft, error) {
	draft, err := s.draftRepo.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		draft.Content = *req.Content
	}
	if req.Outline != nil {
		draft.Outline = *req.Outline
	}

	if err := s.draftRepo.Update(ctx, draft); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, workspaceID, models.ActivityDraftUpdated, map[string]interface{}{
		"draft_id": draft.ID,
	})

	return draft, nil
}

// AddSectionRequest describes a section insert. A nil ParentID appends
// at the top level.
type AddSectionRequest struct {
	ParentID *string             `json:"parent_id"`
	Section  models.DraftSection `json:"section"`
}

// AddSection inserts a new section under the parent (or at top level)
// and persists the outline.
func (s *DraftService) AddSection(ctx context.Context, workspaceID string, req *AddSectionRequest) (*models.Draft, error) {
	if err := validation.ValidateStruct(&req.Section,
		validation.Field(&req.Section.Title, validation.Required, validation.Length(1, 255)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	draft, err := s.draftRepo.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	outline, ok := AddOutlineSection(draft.Outline, req.ParentID, req.Section)
	if !ok {
		return nil, domain.Validationf("parent section %s not found", *req.ParentID)
	}

	draft.Outline = outline
	if err := s.draftRepo.Update(ctx, draft); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, workspaceID, models.ActivityDraftUpdated, map[string]interface{}{
		"draft_id": draft.ID,
		"action":   "section_added",
	})

	return draft, nil
}

// UpdateSectionField replaces one field of the first section matching
// sectionID. A miss is a structural no-op, not an error; concurrent
// edits may race with tree changes and must not blow up the save loop.
func (s *DraftService) UpdateSectionField(ctx context.Context, workspaceID, sectionID string, field SectionField, value string) (*models.Draft, error) {
	if field != SectionFieldTitle && field != SectionFieldContent {
		return nil, domain.Validationf("unknown section field %q", field)
	}

	draft, err := s.draftRepo.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	outline, changed := UpdateOutlineField(draft.Outline, sectionID, field, value)
	if !changed {
		s.logger.Debug("section field update missed", "workspace_id", workspaceID, "section_id", sectionID)
		return draft, nil
	}

	draft.Outline = outline
	if err := s.draftRepo.Update(ctx, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

func (s *DraftService) recordActivity(ctx context.Context, workspaceID, activityType string, payload map[string]interface{}) {
	err := s.activityRepo.Create(ctx, &models.Activity{
		WorkspaceID: workspaceID,
		Type:        activityType,
		Payload:     payload,
	})
	if err != nil {
		// The audit trail is observational; a failed append never fails
		// the edit itself.
		s.logger.Warn("record activity failed", "type", activityType, "error", err)
	}
}

// outlineIndex flattens a section tree into an id-to-node map so edits
// are O(1) lookups instead of repeated recursive descent.
type outlineIndex map[string]*models.DraftSection

func buildOutlineIndex(sections []models.DraftSection) outlineIndex {
	idx := make(outlineIndex)
	var walk func(list []models.DraftSection)
	walk = func(list []models.DraftSection) {
		for i := range list {
			sec := &list[i]
			if _, seen := idx[sec.ID]; !seen {
				idx[sec.ID] = sec
			}
			walk(sec.Children)
		}
	}
	walk(sections)
	return idx
}

// AddOutlineSection returns a new outline with the section appended
// under parentID, or at top level when parentID is nil. Defaults are
// filled in: generated id, level 2 under a parent and 1 at the root,
// path derived from the parent, empty children. The input outline is
// not mutated. ok is false when parentID does not exist.
func AddOutlineSection(outline []models.DraftSection, parentID *string, section models.DraftSection) ([]models.DraftSection, bool) {
	out := cloneOutline(outline)

	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if section.Children == nil {
		section.Children = []models.DraftSection{}
	}

	if parentID == nil || *parentID == "" {
		if section.Level == 0 {
			section.Level = 1
		}
		if section.Path == "" {
			section.Path = section.ID
		}
		return append(out, section), true
	}

	idx := buildOutlineIndex(out)
	parent, ok := idx[*parentID]
	if !ok {
		return outline, false
	}

	if section.Level == 0 {
		section.Level = 2
	}
	if section.Path == "" {
		section.Path = parent.Path + "/" + section.ID
	}
	parent.Children = append(parent.Children, section)
	return out, true
}

// UpdateOutlineField returns a new outline with one field of the first
// section matching sectionID replaced. changed is false on a miss, and
// the original outline is returned untouched.
func UpdateOutlineField(outline []models.DraftSection, sectionID string, field SectionField, value string) ([]models.DraftSection, bool) {
	out := cloneOutline(outline)

	idx := buildOutlineIndex(out)
	sec, ok := idx[sectionID]
	if !ok {
		return outline, false
	}

	switch field {
	case SectionFieldTitle:
		sec.Title = value
	case SectionFieldContent:
		sec.Content = value
	default:
		return outline, false
	}

	return out, true
}

func cloneOutline(sections []models.DraftSection) []models.DraftSection {
	if sections == nil {
		return []models.DraftSection{}
	}
	out := make([]models.DraftSection, len(sections))
	for i, sec := range sections {
		sec.Children = cloneOutline(sec.Children)
		out[i] = sec
	}
	return out
}
