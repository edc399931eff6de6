package models

import (
	"time"
)

// Workspace statuses. Active and paused swap freely; completed is
// terminal and only reachable through explicit completion or a
// successful publish.
const (
	WorkspaceStatusActive    = "active"
	WorkspaceStatusPaused    = "paused"
	WorkspaceStatusCompleted = "completed"
)

// Workspace is one collaborative authoring session. Exactly one draft
// belongs to each workspace.
type Workspace struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Goal      string    `json:"goal,omitempty" db:"goal"`
	Status    string    `json:"status" db:"status"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidWorkspaceStatus reports whether s is a known workspace status.
func ValidWorkspaceStatus(s string) bool {
	switch s {
	case WorkspaceStatusActive, WorkspaceStatusPaused, WorkspaceStatusCompleted:
		return true
	}
	return false
}
