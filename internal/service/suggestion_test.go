package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// In-memory fakes for the workspace-side repositories. They implement
// just enough behavior for service tests: revision numbers are assigned
// at create time and terminal suggestions refuse status updates.

type fakeSuggestionRepo struct {
	byID map[string]*models.Suggestion
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{byID: map[string]*models.Suggestion{}}
}

func (r *fakeSuggestionRepo) Create(_ context.Context, s *models.Suggestion) error {
	if s.ID == "" {
		s.ID = "sug-1"
	}
	r.byID[s.ID] = s
	return nil
}

func (r *fakeSuggestionRepo) GetByID(_ context.Context, id string) (*models.Suggestion, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundf("suggestion %s not found", id)
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSuggestionRepo) ListByWorkspace(_ context.Context, workspaceID string) ([]*models.Suggestion, error) {
	var out []*models.Suggestion
	for _, s := range r.byID {
		if s.WorkspaceID == workspaceID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSuggestionRepo) UpdateStatus(_ context.Context, id, status string) error {
	s, ok := r.byID[id]
	if !ok {
		return domain.NotFoundf("suggestion %s not found", id)
	}
	if s.Terminal() {
		return domain.ErrConflict
	}
	s.Status = status
	return nil
}

type fakeDraftRepo struct {
	byWorkspace map[string]*models.Draft
	updateErr   error
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{byWorkspace: map[string]*models.Draft{}}
}

func (r *fakeDraftRepo) Create(_ context.Context, d *models.Draft) error {
	r.byWorkspace[d.WorkspaceID] = d
	return nil
}

func (r *fakeDraftRepo) GetByWorkspace(_ context.Context, workspaceID string) (*models.Draft, error) {
	d, ok := r.byWorkspace[workspaceID]
	if !ok {
		return nil, domain.NotFoundf("draft for workspace %s not found", workspaceID)
	}
	copied := *d
	copied.Content = deepCopyMap(d.Content)
	return &copied, nil
}

func (r *fakeDraftRepo) Update(_ context.Context, d *models.Draft) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.byWorkspace[d.WorkspaceID] = d
	return nil
}

type fakeRevisionRepo struct {
	byWorkspace map[string][]*models.Revision
}

func newFakeRevisionRepo() *fakeRevisionRepo {
	return &fakeRevisionRepo{byWorkspace: map[string][]*models.Revision{}}
}

func (r *fakeRevisionRepo) Create(_ context.Context, rev *models.Revision) error {
	rev.Number = len(r.byWorkspace[rev.WorkspaceID]) + 1
	r.byWorkspace[rev.WorkspaceID] = append(r.byWorkspace[rev.WorkspaceID], rev)
	return nil
}

func (r *fakeRevisionRepo) ListByWorkspace(_ context.Context, workspaceID string) ([]*models.Revision, error) {
	return r.byWorkspace[workspaceID], nil
}

func (r *fakeRevisionRepo) GetByNumber(_ context.Context, workspaceID string, number int) (*models.Revision, error) {
	for _, rev := range r.byWorkspace[workspaceID] {
		if rev.Number == number {
			return rev, nil
		}
	}
	return nil, domain.NotFoundf("revision %d not found", number)
}

type fakeActivityRepo struct {
	entries []*models.Activity
}

func (r *fakeActivityRepo) Create(_ context.Context, a *models.Activity) error {
	r.entries = append(r.entries, a)
	return nil
}

func (r *fakeActivityRepo) ListByWorkspace(_ context.Context, workspaceID string, limit int) ([]*models.Activity, error) {
	return r.entries, nil
}

// fakeTxManager runs the function directly. Rollback semantics are not
// simulated; tests assert on the error path instead.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type suggestionFixture struct {
	svc         *SuggestionService
	suggestions *fakeSuggestionRepo
	drafts      *fakeDraftRepo
	revisions   *fakeRevisionRepo
	activities  *fakeActivityRepo
}

func newSuggestionFixture(t *testing.T) *suggestionFixture {
	t.Helper()
	f := &suggestionFixture{
		suggestions: newFakeSuggestionRepo(),
		drafts:      newFakeDraftRepo(),
		revisions:   newFakeRevisionRepo(),
		activities:  &fakeActivityRepo{},
	}
	f.svc = NewSuggestionService(f.suggestions, f.drafts, f.revisions, f.activities, fakeTxManager{}, testLogger())

	f.drafts.byWorkspace["ws-1"] = &models.Draft{
		ID:          "draft-1",
		WorkspaceID: "ws-1",
		Content: map[string]interface{}{
			"title": "Field Notes",
			"meta":  map[string]interface{}{"version": "1"},
		},
	}
	return f
}

func (f *suggestionFixture) seedProposed(diff []models.DiffOp) *models.Suggestion {
	s := &models.Suggestion{
		ID:          "sug-1",
		WorkspaceID: "ws-1",
		DraftID:     "draft-1",
		Diff:        diff,
		Rationale:   "tighten the title",
		Status:      models.SuggestionStatusProposed,
	}
	f.suggestions.byID[s.ID] = s
	return s
}

func TestCreateSuggestionValidation(t *testing.T) {
	f := newSuggestionFixture(t)

	tests := []struct {
		name string
		req  *CreateSuggestionRequest
	}{
		{"missing workspace", &CreateSuggestionRequest{Diff: []models.DiffOp{{Operation: "replace", Path: "title"}}}},
		{"empty diff", &CreateSuggestionRequest{WorkspaceID: "ws-1"}},
		{"unknown operation", &CreateSuggestionRequest{WorkspaceID: "ws-1", Diff: []models.DiffOp{{Operation: "remove", Path: "title"}}}},
		{"missing path", &CreateSuggestionRequest{WorkspaceID: "ws-1", Diff: []models.DiffOp{{Operation: "replace"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSuggestion(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateSuggestionResolvesDraft(t *testing.T) {
	f := newSuggestionFixture(t)

	s, err := f.svc.CreateSuggestion(context.Background(), &CreateSuggestionRequest{
		WorkspaceID: "ws-1",
		Diff:        []models.DiffOp{{Operation: models.DiffOpReplace, Path: "title", NewValue: "Trail Notes"}},
		Rationale:   "shorter",
	})
	if err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}
	if s.DraftID != "draft-1" {
		t.Errorf("draft id = %q, want draft-1", s.DraftID)
	}
	if s.Status != models.SuggestionStatusProposed {
		t.Errorf("status = %q, want proposed", s.Status)
	}
}

func TestApplySuggestion(t *testing.T) {
	f := newSuggestionFixture(t)
	f.seedProposed([]models.DiffOp{
		{Operation: models.DiffOpReplace, Path: "title", NewValue: "Trail Notes"},
	})

	applied, err := f.svc.ApplySuggestion(context.Background(), "sug-1")
	if err != nil {
		t.Fatalf("ApplySuggestion: %v", err)
	}
	if applied.Status != models.SuggestionStatusApplied {
		t.Errorf("status = %q, want applied", applied.Status)
	}

	draft := f.drafts.byWorkspace["ws-1"]
	if draft.Content["title"] != "Trail Notes" {
		t.Errorf("draft title = %v, want Trail Notes", draft.Content["title"])
	}

	revs := f.revisions.byWorkspace["ws-1"]
	if len(revs) != 1 {
		t.Fatalf("revisions = %d, want 1", len(revs))
	}
	if revs[0].Number != 1 || draft.CurrentRevision != 1 {
		t.Errorf("revision number = %d, draft current = %d, want 1/1", revs[0].Number, draft.CurrentRevision)
	}
	if noop, _ := revs[0].Metadata["noop"].(bool); noop {
		t.Error("revision marked noop for a clean apply")
	}

	if len(f.activities.entries) != 1 || f.activities.entries[0].Type != models.ActivitySuggestionApplied {
		t.Errorf("activities = %+v, want one suggestion_applied entry", f.activities.entries)
	}
}

func TestApplySuggestionMissingPathSoftSuccess(t *testing.T) {
	f := newSuggestionFixture(t)
	f.seedProposed([]models.DiffOp{
		{Operation: models.DiffOpReplace, Path: "sections.4.title", NewValue: "x"},
	})
	before := deepCopyMap(f.drafts.byWorkspace["ws-1"].Content)

	applied, err := f.svc.ApplySuggestion(context.Background(), "sug-1")
	if err != nil {
		t.Fatalf("ApplySuggestion: %v", err)
	}
	if applied.Status != models.SuggestionStatusApplied {
		t.Errorf("status = %q, want applied", applied.Status)
	}

	draft := f.drafts.byWorkspace["ws-1"]
	if got := draft.Content["title"]; got != before["title"] {
		t.Errorf("content changed on a missing path: title = %v", got)
	}

	revs := f.revisions.byWorkspace["ws-1"]
	if len(revs) != 1 {
		t.Fatalf("revisions = %d, want 1: the no-op is still recorded", len(revs))
	}
	if noop, _ := revs[0].Metadata["noop"].(bool); !noop {
		t.Error("revision metadata missing noop marker")
	}
}

func TestApplySuggestionTerminalConflicts(t *testing.T) {
	for _, status := range []string{models.SuggestionStatusApplied, models.SuggestionStatusRejected} {
		t.Run(status, func(t *testing.T) {
			f := newSuggestionFixture(t)
			s := f.seedProposed([]models.DiffOp{{Operation: models.DiffOpReplace, Path: "title", NewValue: "x"}})
			s.Status = status

			if _, err := f.svc.ApplySuggestion(context.Background(), "sug-1"); !errors.Is(err, domain.ErrConflict) {
				t.Errorf("apply err = %v, want ErrConflict", err)
			}
			if _, err := f.svc.RejectSuggestion(context.Background(), "sug-1", "late"); !errors.Is(err, domain.ErrConflict) {
				t.Errorf("reject err = %v, want ErrConflict", err)
			}
			if f.suggestions.byID["sug-1"].Status != status {
				t.Errorf("status moved off %s", status)
			}
		})
	}
}

func TestApplySuggestionDraftUpdateFailure(t *testing.T) {
	f := newSuggestionFixture(t)
	f.seedProposed([]models.DiffOp{{Operation: models.DiffOpReplace, Path: "title", NewValue: "x"}})
	f.drafts.updateErr = errors.New("write failed")

	if _, err := f.svc.ApplySuggestion(context.Background(), "sug-1"); err == nil {
		t.Fatal("expected apply to fail when the draft write fails")
	}
	if f.suggestions.byID["sug-1"].Status != models.SuggestionStatusProposed {
		t.Error("suggestion left proposed state despite the failed transaction")
	}
}

func TestRejectSuggestion(t *testing.T) {
	f := newSuggestionFixture(t)
	f.seedProposed([]models.DiffOp{{Operation: models.DiffOpReplace, Path: "title", NewValue: "x"}})

	rejected, err := f.svc.RejectSuggestion(context.Background(), "sug-1", "off topic")
	if err != nil {
		t.Fatalf("RejectSuggestion: %v", err)
	}
	if rejected.Status != models.SuggestionStatusRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}
	if f.drafts.byWorkspace["ws-1"].Content["title"] != "Field Notes" {
		t.Error("rejection touched draft content")
	}
	if len(f.revisions.byWorkspace["ws-1"]) != 0 {
		t.Error("rejection created a revision")
	}
	if len(f.activities.entries) != 1 || f.activities.entries[0].Type != models.ActivitySuggestionRejected {
		t.Errorf("activities = %+v, want one suggestion_rejected entry", f.activities.entries)
	}
	if reason := f.activities.entries[0].Payload["reason"]; reason != "off topic" {
		t.Errorf("reason = %v, want off topic", reason)
	}
}
