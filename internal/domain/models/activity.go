package models

import (
	"time"
)

// Common activity types. The column is free-form; these are the tags the
// services emit.
const (
	ActivityMessageSent        = "message_sent"
	ActivityDraftUpdated       = "draft_updated"
	ActivitySuggestionApplied  = "suggestion_applied"
	ActivitySuggestionRejected = "suggestion_rejected"
	ActivityRevisionCreated    = "revision_created"
	ActivityWorkspaceCreated   = "workspace_created"
	ActivityWorkspaceUpdated   = "workspace_updated"
	ActivityResourceAdded      = "resource_added"
	ActivityPublish            = "publish"
)

// Activity is one append-only audit log entry. Never mutated or deleted.
type Activity struct {
	ID          string                 `json:"id" db:"id"`
	WorkspaceID string                 `json:"workspace_id" db:"workspace_id"`
	Type        string                 `json:"type" db:"type"`
	Payload     map[string]interface{} `json:"payload,omitempty" db:"payload"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}
