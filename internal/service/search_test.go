package service

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"fieldguide/internal/domain/models"
)

func TestScoreEntriesExactPatternOutranksBodyHit(t *testing.T) {
	entries := []models.SearchEntry{
		{
			IssueSlug:   "debugging-01",
			ContentType: models.ContentTypePattern,
			PatternName: "Backoff",
			Title:       "Backoff",
			Body:        "Retry when errors spike.",
		},
		{
			IssueSlug:   "debugging-01",
			ContentType: models.ContentTypeDescription,
			PatternName: "Bisect",
			Title:       "Bisect",
			Body:        "Backoff helps but bisecting is faster.",
		},
	}

	results := ScoreEntries(entries, "Backoff", []string{"backoff"})
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	// Exact pattern match: 100 + 50 (term in pattern) + 10 (term in
	// title+body) + 30 (pattern weight).
	if results[0].PatternName != "Backoff" {
		t.Fatalf("top result = %q, want Backoff", results[0].PatternName)
	}
	if results[0].RelevanceScore != 190 {
		t.Errorf("exact score = %v, want 190", results[0].RelevanceScore)
	}
	// Body-only match: 10 + 10 (description weight).
	if results[1].RelevanceScore != 20 {
		t.Errorf("body score = %v, want 20", results[1].RelevanceScore)
	}
}

func TestScoreEntriesPerTermAccumulation(t *testing.T) {
	entries := []models.SearchEntry{
		{
			IssueSlug:   "debugging-01",
			ContentType: models.ContentTypeSection,
			Title:       "Slow Deploys",
			Body:        "",
		},
	}

	results := ScoreEntries(entries, "slow deploys", []string{"slow", "deploys"})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	// Two body-term hits (10 each) + section weight 15. No pattern name,
	// so no exact or per-term pattern bonus.
	if results[0].RelevanceScore != 35 {
		t.Errorf("score = %v, want 35", results[0].RelevanceScore)
	}
}

func TestScoreEntriesDropsNonMatches(t *testing.T) {
	entries := []models.SearchEntry{
		{IssueSlug: "a", ContentType: models.ContentTypeSection, Title: "Unrelated", Body: "Nothing here."},
	}

	results := ScoreEntries(entries, "backoff", []string{"backoff"})
	if len(results) != 0 {
		t.Errorf("results = %v, want none: type weight alone must not surface a row", results)
	}
}

func TestScoreEntriesDedupeKeepsHighest(t *testing.T) {
	entries := []models.SearchEntry{
		{
			IssueSlug:   "debugging-01",
			ContentType: models.ContentTypeDescription,
			PatternName: "Backoff",
			Title:       "Backoff",
			Body:        "Backoff description.",
		},
		{
			IssueSlug:   "debugging-01",
			ContentType: models.ContentTypePattern,
			PatternName: "Backoff",
			Title:       "Backoff",
			Body:        "Backoff signals.",
		},
	}

	results := ScoreEntries(entries, "backoff", []string{"backoff"})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1 after dedupe", len(results))
	}
	if results[0].ContentType != models.ContentTypePattern {
		t.Errorf("kept %q, want the higher-weighted pattern row", results[0].ContentType)
	}
}

func TestScoreEntriesTitleTiebreak(t *testing.T) {
	entries := []models.SearchEntry{
		{IssueSlug: "a", ContentType: models.ContentTypeSection, Title: "Zulu retries", Body: ""},
		{IssueSlug: "b", ContentType: models.ContentTypeSection, Title: "Alpha retries", Body: ""},
	}

	results := ScoreEntries(entries, "retries", []string{"retries"})
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Title != "Alpha retries" {
		t.Errorf("first = %q, want Alpha retries on equal scores", results[0].Title)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := NewSearchService(newFakeSearchRepo(), testLogger())

	resp, err := svc.Search(context.Background(), &SearchRequest{Query: "   "})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 0 || resp.TotalCount != 0 {
		t.Errorf("resp = %+v, want empty success", resp)
	}
}

func TestSearchLimits(t *testing.T) {
	repo := newFakeSearchRepo()
	var entries []models.SearchEntry
	for i := 0; i < 30; i++ {
		entries = append(entries, models.SearchEntry{
			IssueSlug:   "debugging-01",
			ContentType: models.ContentTypePattern,
			PatternName: "Retry pattern " + strings.Repeat("x", i+1),
			Title:       "Retry pattern " + strings.Repeat("x", i+1),
			Body:        "retry",
		})
	}
	repo.rows["debugging-01"] = entries
	svc := NewSearchService(repo, testLogger())

	tests := []struct {
		name      string
		limit     int
		wantLen   int
		wantTotal int
	}{
		{"default", 0, 20, 30},
		{"explicit", 5, 5, 30},
		{"over cap falls back to default", 80, 20, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Search(context.Background(), &SearchRequest{Query: "retry", Limit: tt.limit})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(resp.Results) != tt.wantLen {
				t.Errorf("results = %d, want %d", len(resp.Results), tt.wantLen)
			}
			if resp.TotalCount != tt.wantTotal {
				t.Errorf("total = %d, want %d", resp.TotalCount, tt.wantTotal)
			}
		})
	}
}

func TestSnippetTruncation(t *testing.T) {
	long := strings.Repeat("a", 250)
	entries := []models.SearchEntry{
		{IssueSlug: "a", ContentType: models.ContentTypeDescription, PatternName: "P", Title: "P", Body: long},
	}

	results := ScoreEntries(entries, "aaa", []string{"aaa"})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if got := results[0].Snippet; len([]rune(got)) != 201 || !strings.HasSuffix(got, "…") {
		t.Errorf("snippet = %d chars, want 200 plus ellipsis", len([]rune(got)))
	}
}

func TestSnippetMultiByteBoundary(t *testing.T) {
	long := strings.Repeat("é", 250)
	entries := []models.SearchEntry{
		{IssueSlug: "a", ContentType: models.ContentTypeDescription, PatternName: "P", Title: "P é", Body: long},
	}

	results := ScoreEntries(entries, "é", []string{"é"})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	got := results[0].Snippet
	if !utf8.ValidString(got) {
		t.Fatal("snippet is not valid UTF-8")
	}
	if len([]rune(got)) != 201 || !strings.HasSuffix(got, "…") {
		t.Errorf("snippet = %d chars, want 200 plus ellipsis", len([]rune(got)))
	}
}

func TestSuggest(t *testing.T) {
	repo := newFakeSearchRepo()
	repo.names = []string{"Backoff", "Backpressure", "Bisect"}
	svc := NewSearchService(repo, testLogger())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"too short", "b", []string{}},
		{"matches", "back", []string{"Backoff", "Backpressure"}},
		{"no matches", "zz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Suggest(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Suggest: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestBuildIndexEntries(t *testing.T) {
	issue := &models.Issue{
		Slug:    "debugging-01",
		Title:   "Field Guide to Debugging",
		Tagline: "Find what broke.",
		Intro:   "Patterns for narrowing down failures.",
		Sections: []models.Section{
			{
				ID:    "s1",
				Title: "Resilience",
				Entries: []models.Entry{
					{
						Pattern:     "Backoff",
						Description: "Retry with growing delays.",
						Signals:     []string{"Errors spike.", "Queues grow."},
						Protocol:    "1. Wait → 2. Retry",
					},
				},
			},
		},
	}

	entries := BuildIndexEntries(issue)
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want issue + section + pattern + description", len(entries))
	}

	if entries[0].ContentType != models.ContentTypeIssue || entries[0].Body != "Find what broke. Patterns for narrowing down failures." {
		t.Errorf("issue row = %+v", entries[0])
	}
	if entries[1].ContentType != models.ContentTypeSection || entries[1].Title != "Resilience" || entries[1].Body != "" {
		t.Errorf("section row = %+v", entries[1])
	}
	if entries[2].ContentType != models.ContentTypePattern || entries[2].Body != "Errors spike. Queues grow. 1. Wait → 2. Retry" {
		t.Errorf("pattern row = %+v", entries[2])
	}
	if entries[3].ContentType != models.ContentTypeDescription || entries[3].Body != "Retry with growing delays." {
		t.Errorf("description row = %+v", entries[3])
	}
	for i := 1; i < 4; i++ {
		if entries[i].SectionID != "s1" {
			t.Errorf("row %d section id = %q, want s1", i, entries[i].SectionID)
		}
	}
}
