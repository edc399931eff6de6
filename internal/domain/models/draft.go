package models

import (
	"time"
)

// Draft is the mutable working content of a workspace. Content is the
// raw JSON object suggestions diff against; Outline is the structured
// section tree the editor works on. CurrentRevision only ever increases.
type Draft struct {
	ID              string                 `json:"id" db:"id"`
	WorkspaceID     string                 `json:"workspace_id" db:"workspace_id"`
	Content         map[string]interface{} `json:"content" db:"content"`
	Outline         []DraftSection         `json:"outline" db:"outline"`
	CurrentRevision int                    `json:"current_revision" db:"current_revision"`
	CreatedAt       time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at" db:"updated_at"`
}

// DraftSection is one node of the outline tree. Level 1 sections become
// published sections; their level 2 children become entries. Path is the
// stable identifier used to scope chat turns and suggestions.
type DraftSection struct {
	ID       string         `json:"id"`
	Path     string         `json:"path"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Level    int            `json:"level"`
	Children []DraftSection `json:"children"`
}
