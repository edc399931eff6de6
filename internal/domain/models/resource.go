package models

import (
	"time"
)

// Resource types.
const (
	ResourceTypeFile = "file"
	ResourceTypeText = "text"
	ResourceTypeURL  = "url"
)

// WorkspaceResource is an attached reference for a workspace: an
// uploaded file (Content is the object-store key), inline text, or a
// URL. Lifecycle is independent from the draft.
type WorkspaceResource struct {
	ID          string                 `json:"id" db:"id"`
	WorkspaceID string                 `json:"workspace_id" db:"workspace_id"`
	Name        string                 `json:"name" db:"name"`
	Type        string                 `json:"type" db:"type"`
	Content     string                 `json:"content" db:"content"`
	MimeType    string                 `json:"mime_type,omitempty" db:"mime_type"`
	Size        int64                  `json:"size" db:"size"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}

// ValidResourceType reports whether t is a known resource type.
func ValidResourceType(t string) bool {
	switch t {
	case ResourceTypeFile, ResourceTypeText, ResourceTypeURL:
		return true
	}
	return false
}
