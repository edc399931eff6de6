package models

import (
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a workspace conversation. Append-only, replayed
// in created_at order. A nil SectionPath means the turn is scoped to the
// whole draft.
type Message struct {
	ID          string                 `json:"id" db:"id"`
	WorkspaceID string                 `json:"workspace_id" db:"workspace_id"`
	Role        string                 `json:"role" db:"role"`
	Content     string                 `json:"content" db:"content"`
	SectionPath *string                `json:"section_path,omitempty" db:"section_path"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}
