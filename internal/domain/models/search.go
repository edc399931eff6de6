package models

// Content types indexed for search, in decreasing relevance weight.
const (
	ContentTypeIssue       = "issue"
	ContentTypeSection     = "section"
	ContentTypePattern     = "pattern"
	ContentTypeDescription = "description"
)

// SearchEntry is one denormalized row of the search index. Rows are a
// rebuildable cache over published issues, never a source of truth.
type SearchEntry struct {
	ID          string `json:"id" db:"id"`
	IssueSlug   string `json:"issue_slug" db:"issue_slug"`
	ContentType string `json:"content_type" db:"content_type"`
	SectionID   string `json:"section_id,omitempty" db:"section_id"`
	PatternName string `json:"pattern_name,omitempty" db:"pattern_name"`
	Title       string `json:"title" db:"title"`
	Body        string `json:"body" db:"body"`
}

// SearchResult is one scored hit returned to the caller.
type SearchResult struct {
	IssueSlug      string  `json:"issue_slug"`
	ContentType    string  `json:"content_type"`
	SectionID      string  `json:"section_id,omitempty"`
	PatternName    string  `json:"pattern_name,omitempty"`
	Title          string  `json:"title"`
	Snippet        string  `json:"snippet"`
	RelevanceScore float64 `json:"relevanceScore"`
}
