package service

import (
	"context"
	"errors"
	"testing"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
)

type revisionFixture struct {
	svc        *RevisionService
	drafts     *fakeDraftRepo
	revisions  *fakeRevisionRepo
	activities *fakeActivityRepo
}

func newRevisionFixture(t *testing.T) *revisionFixture {
	t.Helper()
	f := &revisionFixture{
		drafts:     newFakeDraftRepo(),
		revisions:  newFakeRevisionRepo(),
		activities: &fakeActivityRepo{},
	}
	f.svc = NewRevisionService(f.revisions, f.drafts, f.activities, fakeTxManager{}, testLogger())

	f.drafts.byWorkspace["ws-1"] = &models.Draft{
		ID:          "draft-1",
		WorkspaceID: "ws-1",
		Content:     map[string]interface{}{"title": "v1"},
	}
	return f
}

func TestCreateRevisionNumbersAreMonotonic(t *testing.T) {
	f := newRevisionFixture(t)

	for want := 1; want <= 3; want++ {
		rev, err := f.svc.CreateRevision(context.Background(), "ws-1", nil)
		if err != nil {
			t.Fatalf("CreateRevision %d: %v", want, err)
		}
		if rev.Number != want {
			t.Errorf("number = %d, want %d", rev.Number, want)
		}
		if f.drafts.byWorkspace["ws-1"].CurrentRevision != want {
			t.Errorf("draft current revision = %d, want %d", f.drafts.byWorkspace["ws-1"].CurrentRevision, want)
		}
	}
}

func TestCreateRevisionSnapshotsDeeply(t *testing.T) {
	f := newRevisionFixture(t)

	rev, err := f.svc.CreateRevision(context.Background(), "ws-1", nil)
	if err != nil {
		t.Fatalf("CreateRevision: %v", err)
	}

	f.drafts.byWorkspace["ws-1"].Content["title"] = "v2"
	if rev.Content["title"] != "v1" {
		t.Error("revision shares storage with the live draft")
	}
}

func TestRestoreRevision(t *testing.T) {
	f := newRevisionFixture(t)

	if _, err := f.svc.CreateRevision(context.Background(), "ws-1", nil); err != nil {
		t.Fatalf("CreateRevision: %v", err)
	}
	f.drafts.byWorkspace["ws-1"].Content = map[string]interface{}{"title": "v2"}

	restored, err := f.svc.RestoreRevision(context.Background(), "ws-1", 1)
	if err != nil {
		t.Fatalf("RestoreRevision: %v", err)
	}
	if restored.Number != 2 {
		t.Errorf("restore revision number = %d, want 2: restores append, never rewrite", restored.Number)
	}
	if from, _ := restored.Metadata["restored_from"].(int); from != 1 {
		t.Errorf("restored_from = %v, want 1", restored.Metadata["restored_from"])
	}
	if f.drafts.byWorkspace["ws-1"].Content["title"] != "v1" {
		t.Errorf("draft title = %v, want v1 back", f.drafts.byWorkspace["ws-1"].Content["title"])
	}
}

func TestRestoreRevisionUnknownNumber(t *testing.T) {
	f := newRevisionFixture(t)

	_, err := f.svc.RestoreRevision(context.Background(), "ws-1", 7)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
