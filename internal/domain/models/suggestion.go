package models

import (
	"time"
)

// Suggestion statuses. Proposed transitions once to either applied or
// rejected; both are terminal.
const (
	SuggestionStatusProposed = "proposed"
	SuggestionStatusApplied  = "applied"
	SuggestionStatusRejected = "rejected"
)

// Diff operations.
const (
	DiffOpReplace = "replace"
	DiffOpAdd     = "add"
)

// DiffOp is one proposed edit against the draft content object. Path is
// a dot-separated key path, e.g. "sections.0.entries.2.description".
type DiffOp struct {
	Operation string      `json:"operation"`
	Path      string      `json:"path"`
	NewValue  interface{} `json:"newValue"`
}

// Suggestion is an AI-proposed edit awaiting review. The model never
// writes to the draft directly; it proposes diffs that an editor applies
// or rejects.
type Suggestion struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	DraftID     string    `json:"draft_id" db:"draft_id"`
	SectionPath *string   `json:"section_path,omitempty" db:"section_path"`
	Diff        []DiffOp  `json:"diff" db:"diff"`
	Rationale   string    `json:"rationale" db:"rationale"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Terminal reports whether the suggestion has left the proposed state.
func (s *Suggestion) Terminal() bool {
	return s.Status != SuggestionStatusProposed
}
