package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"fieldguide/internal/config"
	"fieldguide/internal/domain/models"
)

// Draft sections carry free text instead of a protocol, so they get a
// larger per-entry clip than published protocols.
const packedSectionChars = 600

// TocItem is one table-of-contents line.
type TocItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PackedEntry is one flattened content unit inside a packed context.
type PackedEntry struct {
	Section     string   `json:"section"`
	Pattern     string   `json:"pattern"`
	Description string   `json:"description,omitempty"`
	Signals     []string `json:"signals,omitempty"`
	Protocol    string   `json:"protocol,omitempty"`
}

// PackedContext is the bounded grounding context handed to a model.
// Serialized size never exceeds the maxChars it was packed with, except
// in the meta+toc floor case where nothing more can be dropped.
type PackedContext struct {
	Meta    map[string]string `json:"meta"`
	Toc     []TocItem         `json:"toc"`
	Entries []PackedEntry     `json:"entries"`
}

// JSON serializes the packed context. Struct field order makes the
// output byte-stable for identical input.
func (pc *PackedContext) JSON() ([]byte, error) {
	return json.Marshal(pc)
}

// PackIssueContext builds a bounded grounding context from a published
// issue. Entries are sorted by (section title, pattern name); when the
// serialized size is over maxChars, entries are dropped from the end
// until it fits or none remain. Deterministic and idempotent.
func PackIssueContext(issue *models.Issue, maxChars int) (*PackedContext, error) {
	pc := &PackedContext{
		Meta: map[string]string{
			"slug":    issue.Slug,
			"title":   issue.Title,
			"version": issue.Version,
		},
		Toc:     make([]TocItem, 0, len(issue.Sections)),
		Entries: []PackedEntry{},
	}
	if issue.Tagline != "" {
		pc.Meta["tagline"] = issue.Tagline
	}

	for _, section := range issue.Sections {
		pc.Toc = append(pc.Toc, TocItem{ID: section.ID, Title: section.Title})
		for _, entry := range section.Entries {
			pc.Entries = append(pc.Entries, PackedEntry{
				Section:     section.Title,
				Pattern:     entry.Pattern,
				Description: entry.Description,
				Signals:     clipSignals(entry.Signals),
				Protocol:    truncate(entry.Protocol, config.MaxProtocolChars),
			})
		}
	}

	sortEntries(pc.Entries)

	return fitBudget(pc, maxChars)
}

// PackDraftContext builds a grounding context from a workspace draft,
// optionally scoped to the subtree rooted at sectionPath.
func PackDraftContext(workspace *models.Workspace, draft *models.Draft, sectionPath string, maxChars int) (*PackedContext, error) {
	pc := &PackedContext{
		Meta: map[string]string{
			"workspace": workspace.Title,
			"status":    workspace.Status,
		},
		Toc:     []TocItem{},
		Entries: []PackedEntry{},
	}

	for _, root := range draft.Outline {
		pc.Toc = append(pc.Toc, TocItem{ID: root.ID, Title: root.Title})
	}

	for _, root := range draft.Outline {
		collectDraftEntries(pc, root.Title, root, sectionPath, false)
	}

	sortEntries(pc.Entries)

	return fitBudget(pc, maxChars)
}

// collectDraftEntries walks the outline adding one entry per node with
// content. inScope becomes true once the walk passes the scoping path.
func collectDraftEntries(pc *PackedContext, sectionTitle string, node models.DraftSection, sectionPath string, inScope bool) {
	if sectionPath == "" || node.Path == sectionPath {
		inScope = true
	}
	if inScope && strings.TrimSpace(node.Content) != "" {
		pc.Entries = append(pc.Entries, PackedEntry{
			Section:  sectionTitle,
			Pattern:  node.Title,
			Protocol: truncate(node.Content, packedSectionChars),
		})
	}
	for _, child := range node.Children {
		collectDraftEntries(pc, sectionTitle, child, sectionPath, inScope)
	}
}

func sortEntries(entries []PackedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Section != entries[j].Section {
			return entries[i].Section < entries[j].Section
		}
		return entries[i].Pattern < entries[j].Pattern
	})
}

// fitBudget drops entries from the end until the serialized context fits
// maxChars. With zero entries left, meta+toc stay regardless of size.
func fitBudget(pc *PackedContext, maxChars int) (*PackedContext, error) {
	for {
		raw, err := pc.JSON()
		if err != nil {
			return nil, fmt.Errorf("serialize packed context: %w", err)
		}
		if len(raw) <= maxChars || len(pc.Entries) == 0 {
			return pc, nil
		}
		pc.Entries = pc.Entries[:len(pc.Entries)-1]
	}
}

func clipSignals(signals []string) []string {
	if len(signals) <= config.MaxPackedSignals {
		return signals
	}
	return signals[:config.MaxPackedSignals]
}

// truncate clips s to max characters. Clipping counts runes so a
// multi-byte character is never split into an invalid tail.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// groundingInstructions is the fixed tail of every system prompt.
const groundingInstructions = `Ground every answer in the provided content only. Refer to patterns by their exact names. If asked about a pattern not present in the content, say so politely and point to the closest match instead of inventing one.`

// BuildSystemPrompt renders the packed context into the system prompt:
// identity line, table of contents, one block per entry, then the fixed
// grounding instructions.
func BuildSystemPrompt(identity string, pc *PackedContext) string {
	var sb strings.Builder

	sb.WriteString(identity)
	sb.WriteString("\n\n")

	if len(pc.Toc) > 0 {
		sb.WriteString("Table of contents:\n")
		for _, item := range pc.Toc {
			fmt.Fprintf(&sb, "- %s\n", item.Title)
		}
		sb.WriteString("\n")
	}

	for _, entry := range pc.Entries {
		fmt.Fprintf(&sb, "## %s (%s)\n", entry.Pattern, entry.Section)
		if entry.Description != "" {
			sb.WriteString(entry.Description)
			sb.WriteString("\n")
		}
		for _, signal := range entry.Signals {
			fmt.Fprintf(&sb, "- Signal: %s\n", signal)
		}
		if entry.Protocol != "" {
			fmt.Fprintf(&sb, "Protocol: %s\n", entry.Protocol)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(groundingInstructions)

	return sb.String()
}
