package models

import (
	"time"
)

// Bookmark marks an issue, section or pattern for a reader. Uniqueness
// is enforced on the full (user, slug, type, section, pattern) key;
// creating the same bookmark twice is a conflict.
type Bookmark struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	IssueSlug    string    `json:"issue_slug" db:"issue_slug"`
	BookmarkType string    `json:"bookmark_type" db:"bookmark_type"`
	SectionID    string    `json:"section_id,omitempty" db:"section_id"`
	PatternName  string    `json:"pattern_name,omitempty" db:"pattern_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
