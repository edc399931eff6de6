package models

import (
	"time"
)

// Issue is a published, read-only zine issue. Sections are stored as a
// JSONB blob; the shape below is the application contract, the database
// does not enforce it.
type Issue struct {
	ID          string                 `json:"id" db:"id"`
	Slug        string                 `json:"slug" db:"slug"` // unique, immutable once created
	Title       string                 `json:"title" db:"title"`
	Subtitle    string                 `json:"subtitle,omitempty" db:"subtitle"`
	Version     string                 `json:"version" db:"version"`
	Tagline     string                 `json:"tagline,omitempty" db:"tagline"`
	Intro       string                 `json:"intro,omitempty" db:"intro"`
	Sections    []Section              `json:"sections" db:"sections"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	PublishedAt *time.Time             `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at" db:"updated_at"`
}

// Section is one themed group of entries inside an issue. Published
// sections never nest.
type Section struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Icon    string  `json:"icon"`
	Color   string  `json:"color"`
	Entries []Entry `json:"entries"`
}

// Entry is the atomic content unit: a named pattern with observable
// signals and an actionable protocol.
type Entry struct {
	Pattern     string   `json:"pattern"`
	Description string   `json:"description"`
	Signals     []string `json:"signals"`
	Protocol    string   `json:"protocol"`
}
