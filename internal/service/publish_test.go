package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
)

type fakeWorkspaceRepo struct {
	byID map[string]*models.Workspace
}

func newFakeWorkspaceRepo() *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{byID: map[string]*models.Workspace{}}
}

func (r *fakeWorkspaceRepo) Create(_ context.Context, ws *models.Workspace) error {
	r.byID[ws.ID] = ws
	return nil
}

func (r *fakeWorkspaceRepo) GetByID(_ context.Context, id string) (*models.Workspace, error) {
	ws, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundf("workspace %s not found", id)
	}
	copied := *ws
	return &copied, nil
}

func (r *fakeWorkspaceRepo) List(_ context.Context, ownerID string) ([]*models.Workspace, error) {
	var out []*models.Workspace
	for _, ws := range r.byID {
		if ws.OwnerID == ownerID {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (r *fakeWorkspaceRepo) Update(_ context.Context, ws *models.Workspace) error {
	r.byID[ws.ID] = ws
	return nil
}

func (r *fakeWorkspaceRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

type fakeIssueRepo struct {
	bySlug map[string]*models.Issue
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{bySlug: map[string]*models.Issue{}}
}

func (r *fakeIssueRepo) Create(_ context.Context, issue *models.Issue) error {
	if _, exists := r.bySlug[issue.Slug]; exists {
		return &domain.ConflictError{Message: "slug already exists", ResourceType: "issue", ResourceID: issue.Slug}
	}
	r.bySlug[issue.Slug] = issue
	return nil
}

func (r *fakeIssueRepo) GetBySlug(_ context.Context, slug string) (*models.Issue, error) {
	issue, ok := r.bySlug[slug]
	if !ok {
		return nil, domain.NotFoundf("issue %s not found", slug)
	}
	return issue, nil
}

func (r *fakeIssueRepo) List(_ context.Context) ([]*models.Issue, error) {
	var out []*models.Issue
	for _, issue := range r.bySlug {
		out = append(out, issue)
	}
	return out, nil
}

func (r *fakeIssueRepo) Update(_ context.Context, issue *models.Issue) error {
	r.bySlug[issue.Slug] = issue
	return nil
}

func (r *fakeIssueRepo) Delete(_ context.Context, slug string) error {
	delete(r.bySlug, slug)
	return nil
}

type fakeSearchRepo struct {
	rows  map[string][]models.SearchEntry
	names []string
}

func newFakeSearchRepo() *fakeSearchRepo {
	return &fakeSearchRepo{rows: map[string][]models.SearchEntry{}}
}

func (r *fakeSearchRepo) ReplaceForIssue(_ context.Context, slug string, entries []models.SearchEntry) error {
	r.rows[slug] = entries
	return nil
}

func (r *fakeSearchRepo) DeleteForIssue(_ context.Context, slug string) error {
	delete(r.rows, slug)
	return nil
}

func (r *fakeSearchRepo) Match(_ context.Context, terms []string, issueSlug, contentType string, limit int) ([]models.SearchEntry, error) {
	var out []models.SearchEntry
	for slug, entries := range r.rows {
		if issueSlug != "" && slug != issueSlug {
			continue
		}
		for _, e := range entries {
			if contentType != "" && e.ContentType != contentType {
				continue
			}
			haystack := strings.ToLower(e.Title + " " + e.Body)
			for _, term := range terms {
				if strings.Contains(haystack, term) {
					out = append(out, e)
					break
				}
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSearchRepo) Names(_ context.Context, q string, limit int) ([]string, error) {
	var out []string
	for _, name := range r.names {
		if strings.Contains(strings.ToLower(name), strings.ToLower(q)) {
			out = append(out, name)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type publishFixture struct {
	svc        *PublishService
	workspaces *fakeWorkspaceRepo
	drafts     *fakeDraftRepo
	issues     *fakeIssueRepo
	activities *fakeActivityRepo
	search     *fakeSearchRepo
}

func newPublishFixture(t *testing.T) *publishFixture {
	t.Helper()
	f := &publishFixture{
		workspaces: newFakeWorkspaceRepo(),
		drafts:     newFakeDraftRepo(),
		issues:     newFakeIssueRepo(),
		activities: &fakeActivityRepo{},
		search:     newFakeSearchRepo(),
	}
	searchSvc := NewSearchService(f.search, testLogger())
	f.svc = NewPublishService(f.workspaces, f.drafts, f.issues, f.activities, searchSvc, fakeTxManager{}, testLogger())

	f.workspaces.byID["ws-1"] = &models.Workspace{
		ID:     "ws-1",
		Title:  "Field Guide to Debugging",
		Goal:   "Patterns for finding what broke.",
		Status: models.WorkspaceStatusActive,
	}
	f.drafts.byWorkspace["ws-1"] = &models.Draft{
		ID:          "draft-1",
		WorkspaceID: "ws-1",
		Content:     map[string]interface{}{},
		Outline: []models.DraftSection{
			{
				ID:    "s1",
				Path:  "s1",
				Title: "Resilience",
				Level: 1,
				Children: []models.DraftSection{
					{ID: "s1a", Path: "s1/s1a", Title: "Backoff", Level: 2, Content: "Retry when errors spike."},
				},
			},
		},
	}
	return f
}

func TestPublish(t *testing.T) {
	f := newPublishFixture(t)

	issue, err := f.svc.Publish(context.Background(), &PublishRequest{
		WorkspaceID: "ws-1",
		Slug:        "debugging-01",
		Version:     "01",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if issue.Title != "Field Guide to Debugging" || issue.Intro != "Patterns for finding what broke." {
		t.Errorf("issue meta = %q / %q, want workspace title and goal", issue.Title, issue.Intro)
	}
	if issue.PublishedAt == nil {
		t.Error("published_at not defaulted")
	}
	if f.workspaces.byID["ws-1"].Status != models.WorkspaceStatusCompleted {
		t.Error("workspace not completed")
	}
	if len(f.activities.entries) != 1 || f.activities.entries[0].Type != models.ActivityPublish {
		t.Errorf("activities = %+v, want one publish entry", f.activities.entries)
	}
	if _, indexed := f.search.rows["debugging-01"]; !indexed {
		t.Error("issue not indexed for search")
	}
}

func TestPublishSectionToEntryConversion(t *testing.T) {
	f := newPublishFixture(t)

	issue, err := f.svc.Publish(context.Background(), &PublishRequest{
		WorkspaceID: "ws-1",
		Slug:        "debugging-01",
		Version:     "01",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(issue.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(issue.Sections))
	}
	section := issue.Sections[0]
	if section.Title != "Resilience" {
		t.Errorf("section title = %q, want Resilience", section.Title)
	}
	if len(section.Entries) != 1 {
		t.Fatalf("entries = %d, want 1: root has no content of its own", len(section.Entries))
	}

	entry := section.Entries[0]
	if entry.Pattern != "Backoff" {
		t.Errorf("pattern = %q, want Backoff", entry.Pattern)
	}
	if entry.Description != "Retry when errors spike." {
		t.Errorf("description = %q", entry.Description)
	}
	wantSignals := []string{"Retry when errors spike."}
	if !reflect.DeepEqual(entry.Signals, wantSignals) {
		t.Errorf("signals = %v, want %v", entry.Signals, wantSignals)
	}
	if entry.Protocol != placeholderProtocol {
		t.Errorf("protocol = %q, want the placeholder", entry.Protocol)
	}
}

func TestPublishDuplicateSlug(t *testing.T) {
	f := newPublishFixture(t)
	f.issues.bySlug["debugging-01"] = &models.Issue{Slug: "debugging-01"}

	_, err := f.svc.Publish(context.Background(), &PublishRequest{
		WorkspaceID: "ws-1",
		Slug:        "debugging-01",
		Version:     "01",
	})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}

	if f.workspaces.byID["ws-1"].Status != models.WorkspaceStatusActive {
		t.Error("workspace status changed on a failed publish")
	}
	if len(f.activities.entries) != 0 {
		t.Error("activity recorded on a failed publish")
	}
	if len(f.issues.bySlug) != 1 {
		t.Error("a second issue appeared")
	}
}

func TestPublishEmptyOutline(t *testing.T) {
	f := newPublishFixture(t)
	f.drafts.byWorkspace["ws-1"].Outline = nil

	_, err := f.svc.Publish(context.Background(), &PublishRequest{
		WorkspaceID: "ws-1",
		Slug:        "debugging-01",
		Version:     "01",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestConvertDraftToIssueDeterminism(t *testing.T) {
	outline := []models.DraftSection{
		{ID: "a", Title: "Alpha", Level: 1, Content: "First do this."},
		{ID: "b", Title: "Beta", Level: 1},
		{ID: "c", Title: "Gamma", Level: 1},
	}

	first := ConvertDraftToIssue(outline)
	second := ConvertDraftToIssue(outline)
	if !reflect.DeepEqual(first, second) {
		t.Error("conversion is not deterministic for identical input")
	}
}

func TestConvertDraftToIssuePalette(t *testing.T) {
	outline := make([]models.DraftSection, 9)
	for i := range outline {
		outline[i] = models.DraftSection{ID: string(rune('a' + i)), Title: "Section", Level: 1}
	}

	sections := ConvertDraftToIssue(outline)
	if len(sections) != 9 {
		t.Fatalf("sections = %d, want 9", len(sections))
	}
	for i, sec := range sections {
		if sec.Icon != sectionIcons[i%len(sectionIcons)] {
			t.Errorf("section %d icon = %q, want %q", i, sec.Icon, sectionIcons[i%len(sectionIcons)])
		}
		if sec.Color != sectionColors[i%len(sectionColors)] {
			t.Errorf("section %d color = %q, want %q", i, sec.Color, sectionColors[i%len(sectionColors)])
		}
	}
	// Wrap points: icon 7 repeats the first icon, color 4 the first color.
	if sections[7].Icon != sections[0].Icon || sections[4].Color != sections[0].Color {
		t.Error("palette assignment did not wrap by modulo")
	}
}

func TestConvertDraftToIssueSkipsNonLevelOneRoots(t *testing.T) {
	outline := []models.DraftSection{
		{ID: "a", Title: "Kept", Level: 1},
		{ID: "b", Title: "Dropped", Level: 2},
		{ID: "c", Title: "Also kept", Level: 1},
	}

	sections := ConvertDraftToIssue(outline)
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	// Ordinal stays contiguous across the dropped root.
	if sections[1].Icon != sectionIcons[1] {
		t.Errorf("second section icon = %q, want %q", sections[1].Icon, sectionIcons[1])
	}
}

func TestConvertDraftToIssueRootContentBecomesFirstEntry(t *testing.T) {
	outline := []models.DraftSection{
		{
			ID: "a", Title: "Triage", Level: 1, Content: "First check the logs.",
			Children: []models.DraftSection{
				{ID: "a1", Title: "Bisect", Level: 2, Content: "Then halve the search space."},
				{ID: "a2", Title: "Too deep", Level: 3, Content: "Skipped."},
			},
		},
	}

	sections := ConvertDraftToIssue(outline)
	entries := sections[0].Entries
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2: root content plus one level 2 child", len(entries))
	}
	if entries[0].Pattern != "Triage" || entries[1].Pattern != "Bisect" {
		t.Errorf("patterns = %q, %q", entries[0].Pattern, entries[1].Pattern)
	}
}

func TestExtractSignals(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        []string
	}{
		{
			name:        "keyword sentences kept",
			description: "Deploys get slower. Alerts fire when traffic peaks. Everyone shrugs.",
			want:        []string{"Alerts fire when traffic peaks."},
		},
		{
			name:        "at most three",
			description: "When a. When b. When c. When d.",
			want:        []string{"When a.", "When b.", "When c."},
		},
		{
			name:        "placeholder on no match",
			description: "Nothing notable here.",
			want:        placeholderSignals,
		},
		{
			name:        "placeholder on empty",
			description: "",
			want:        placeholderSignals,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSignals(tt.description)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractSignals(%q) = %v, want %v", tt.description, got, tt.want)
			}
		})
	}
}

func TestExtractProtocol(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			name:        "steps joined with arrows",
			description: "First look around. Ignore the noise. Then write it down.",
			want:        "First look around. → Then write it down.",
		},
		{
			name:        "placeholder on no match",
			description: "Just vibes.",
			want:        placeholderProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractProtocol(tt.description)
			if got != tt.want {
				t.Errorf("ExtractProtocol(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}
