package models

import (
	"time"
)

// Content import statuses.
const (
	ImportStatusPending     = "pending"
	ImportStatusTransformed = "transformed"
)

// ContentImport is raw text an admin uploaded for transformation into a
// structured issue.
type ContentImport struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	RawContent string    `json:"raw_content" db:"raw_content"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
