package service

import (
	"context"
	"errors"
	"testing"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
)

type fakeImportRepo struct {
	created []*models.ContentImport
}

func (r *fakeImportRepo) Create(_ context.Context, imp *models.ContentImport) error {
	imp.ID = "imp-1"
	r.created = append(r.created, imp)
	return nil
}

func (r *fakeImportRepo) List(_ context.Context) ([]*models.ContentImport, error) {
	return r.created, nil
}

func (r *fakeImportRepo) UpdateStatus(_ context.Context, id, status string) error {
	for _, imp := range r.created {
		if imp.ID == id {
			imp.Status = status
			return nil
		}
	}
	return domain.NotFoundf("import %s not found", id)
}

func TestCreateImport(t *testing.T) {
	tests := []struct {
		name     string
		req      *CreateImportRequest
		wantName string
		wantErr  bool
	}{
		{
			name:     "explicit name wins",
			req:      &CreateImportRequest{Name: "Field Notes", RawContent: "# Other Title\ntext"},
			wantName: "Field Notes",
		},
		{
			name:     "name derived from heading",
			req:      &CreateImportRequest{RawContent: "# Trail Notes\ntext"},
			wantName: "Trail Notes",
		},
		{
			name:     "name derived from frontmatter",
			req:      &CreateImportRequest{RawContent: "---\ntitle: From Meta\n---\ntext"},
			wantName: "From Meta",
		},
		{
			name:    "no name anywhere",
			req:     &CreateImportRequest{RawContent: "plain text"},
			wantErr: true,
		},
		{
			name:    "empty content",
			req:     &CreateImportRequest{Name: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeImportRepo{}
			svc := NewContentImportService(repo, testLogger())

			imp, err := svc.CreateImport(context.Background(), tt.req)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateImport: %v", err)
			}
			if imp.Name != tt.wantName {
				t.Errorf("name = %q, want %q", imp.Name, tt.wantName)
			}
			if imp.Status != models.ImportStatusPending {
				t.Errorf("status = %q, want pending", imp.Status)
			}
		})
	}
}

func TestMarkTransformed(t *testing.T) {
	repo := &fakeImportRepo{}
	svc := NewContentImportService(repo, testLogger())

	imp, err := svc.CreateImport(context.Background(), &CreateImportRequest{Name: "x", RawContent: "y"})
	if err != nil {
		t.Fatalf("CreateImport: %v", err)
	}

	svc.MarkTransformed(context.Background(), imp.ID)
	if repo.created[0].Status != models.ImportStatusTransformed {
		t.Errorf("status = %q, want transformed", repo.created[0].Status)
	}

	// Unknown ids are logged, never surfaced.
	svc.MarkTransformed(context.Background(), "missing")
	svc.MarkTransformed(context.Background(), "")
}
