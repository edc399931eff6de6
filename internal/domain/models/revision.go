package models

import (
	"time"
)

// Revision is an immutable numbered snapshot of a draft's content.
// Numbers are sequential per workspace starting at 1 and are assigned
// by the database at insert time, never mutated afterwards.
type Revision struct {
	ID          string                 `json:"id" db:"id"`
	WorkspaceID string                 `json:"workspace_id" db:"workspace_id"`
	DraftID     string                 `json:"draft_id" db:"draft_id"`
	Number      int                    `json:"number" db:"number"`
	Content     map[string]interface{} `json:"content" db:"content"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}
