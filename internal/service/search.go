package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"fieldguide/internal/config"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
)

// Relevance scoring weights. The index only matches keywords; all
// ranking happens here so results are deterministic and testable.
const (
	scoreExactPattern   = 100
	scorePerTermPattern = 50
	scorePerTermBody    = 10
)

var contentTypeWeights = map[string]float64{
	models.ContentTypePattern:     30,
	models.ContentTypeIssue:       20,
	models.ContentTypeSection:     15,
	models.ContentTypeDescription: 10,
}

const defaultTypeWeight = 5

// SearchService answers keyword queries over the denormalized index and
// rebuilds index rows from issue data.
type SearchService struct {
	searchRepo repositories.SearchRepository
	logger     *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(searchRepo repositories.SearchRepository, logger *slog.Logger) *SearchService {
	return &SearchService{
		searchRepo: searchRepo,
		logger:     logger,
	}
}

// SearchRequest is a keyword query, optionally scoped to one issue
// and/or content type.
type SearchRequest struct {
	Query       string `json:"query"`
	IssueSlug   string `json:"issueSlug"`
	ContentType string `json:"contentType"`
	Limit       int    `json:"limit"`
}

// SearchResponse is the envelope returned to the caller.
type SearchResponse struct {
	Results    []models.SearchResult `json:"results"`
	TotalCount int                   `json:"totalCount"`
}

// Search matches, scores, deduplicates and ranks. Empty queries return
// empty success, never an error.
func (s *SearchService) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return &SearchResponse{Results: []models.SearchResult{}}, nil
	}

	terms := strings.Fields(strings.ToLower(query))

	entries, err := s.searchRepo.Match(ctx, terms, req.IssueSlug, req.ContentType, 200)
	if err != nil {
		return nil, err
	}

	results := ScoreEntries(entries, query, terms)

	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	total := len(results)
	if len(results) > limit {
		results = results[:limit]
	}

	return &SearchResponse{Results: results, TotalCount: total}, nil
}

// ScoreEntries computes relevance scores, deduplicates on
// (pattern name, issue slug) keeping the highest, and sorts by score
// descending with title as a stable tiebreak.
func ScoreEntries(entries []models.SearchEntry, query string, terms []string) []models.SearchResult {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	type dedupeKey struct {
		pattern string
		slug    string
	}
	best := make(map[dedupeKey]models.SearchResult)

	for _, e := range entries {
		score := scoreEntry(e, queryLower, terms)
		if score <= 0 {
			continue
		}

		result := models.SearchResult{
			IssueSlug:      e.IssueSlug,
			ContentType:    e.ContentType,
			SectionID:      e.SectionID,
			PatternName:    e.PatternName,
			Title:          e.Title,
			Snippet:        snippet(e.Body, 200),
			RelevanceScore: score,
		}

		key := dedupeKey{pattern: strings.ToLower(e.PatternName), slug: e.IssueSlug}
		if prev, seen := best[key]; !seen || result.RelevanceScore > prev.RelevanceScore {
			best[key] = result
		}
	}

	results := make([]models.SearchResult, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].Title < results[j].Title
	})

	return results
}

func scoreEntry(e models.SearchEntry, queryLower string, terms []string) float64 {
	var score float64

	patternLower := strings.ToLower(e.PatternName)
	bodyLower := strings.ToLower(e.Title + " " + e.Body)

	if patternLower != "" && patternLower == queryLower {
		score += scoreExactPattern
	}

	for _, term := range terms {
		if patternLower != "" && strings.Contains(patternLower, term) {
			score += scorePerTermPattern
		}
		if strings.Contains(bodyLower, term) {
			score += scorePerTermBody
		}
	}

	if score == 0 {
		return 0
	}

	if weight, ok := contentTypeWeights[e.ContentType]; ok {
		score += weight
	} else {
		score += defaultTypeWeight
	}

	return score
}

// snippet clips on a rune boundary; a byte slice could split a
// multi-byte character and emit invalid UTF-8.
func snippet(body string, max int) string {
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "…"
}

// Suggest returns up to ten distinct pattern and section names matching
// the query. Queries under two characters return nothing.
func (s *SearchService) Suggest(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if len(q) < config.MinSuggestQueryLength {
		return []string{}, nil
	}
	names, err := s.searchRepo.Names(ctx, q, config.MaxSearchSuggestions)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ReindexIssue rebuilds the index rows for one issue. The index is a
// cache over issue data and can be rebuilt at any time.
func (s *SearchService) ReindexIssue(ctx context.Context, issue *models.Issue) error {
	return s.searchRepo.ReplaceForIssue(ctx, issue.Slug, BuildIndexEntries(issue))
}

// DropIssue removes an issue's rows after deletion.
func (s *SearchService) DropIssue(ctx context.Context, slug string) error {
	return s.searchRepo.DeleteForIssue(ctx, slug)
}

// BuildIndexEntries flattens an issue into index rows: one for the
// issue, one per section, and a pattern plus description row per entry.
func BuildIndexEntries(issue *models.Issue) []models.SearchEntry {
	entries := []models.SearchEntry{
		{
			IssueSlug:   issue.Slug,
			ContentType: models.ContentTypeIssue,
			Title:       issue.Title,
			Body:        strings.TrimSpace(issue.Tagline + " " + issue.Intro),
		},
	}

	for _, section := range issue.Sections {
		entries = append(entries, models.SearchEntry{
			IssueSlug:   issue.Slug,
			ContentType: models.ContentTypeSection,
			SectionID:   section.ID,
			Title:       section.Title,
		})

		for _, entry := range section.Entries {
			entries = append(entries, models.SearchEntry{
				IssueSlug:   issue.Slug,
				ContentType: models.ContentTypePattern,
				SectionID:   section.ID,
				PatternName: entry.Pattern,
				Title:       entry.Pattern,
				Body:        strings.Join(entry.Signals, " ") + " " + entry.Protocol,
			})
			entries = append(entries, models.SearchEntry{
				IssueSlug:   issue.Slug,
				ContentType: models.ContentTypeDescription,
				SectionID:   section.ID,
				PatternName: entry.Pattern,
				Title:       entry.Pattern,
				Body:        entry.Description,
			})
		}
	}

	return entries
}
