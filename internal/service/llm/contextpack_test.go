package llm

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"fieldguide/internal/config"
	"fieldguide/internal/domain/models"
)

func testIssue(entriesPerSection int) *models.Issue {
	issue := &models.Issue{
		Slug:    "night-watch",
		Title:   "The Night Watch",
		Version: "1",
		Sections: []models.Section{
			{ID: "s1", Title: "Alpha"},
			{ID: "s2", Title: "Beta"},
		},
	}
	for si := range issue.Sections {
		for i := 0; i < entriesPerSection; i++ {
			issue.Sections[si].Entries = append(issue.Sections[si].Entries, models.Entry{
				Pattern:     fmt.Sprintf("Pattern %c%02d", 'A'+si, i),
				Description: strings.Repeat("words ", 40),
				Signals:     []string{"one", "two", "three", "four", "five"},
				Protocol:    strings.Repeat("step ", 100),
			})
		}
	}
	return issue
}

func TestPackIssueContextTruncatesEntries(t *testing.T) {
	pc, err := PackIssueContext(testIssue(2), config.MaxContextChars)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	for _, entry := range pc.Entries {
		if len(entry.Signals) > config.MaxPackedSignals {
			t.Errorf("entry %q kept %d signals", entry.Pattern, len(entry.Signals))
		}
		if len(entry.Protocol) > config.MaxProtocolChars+len("…") {
			t.Errorf("entry %q protocol is %d chars", entry.Pattern, len(entry.Protocol))
		}
		if !strings.HasSuffix(entry.Protocol, "…") {
			t.Errorf("entry %q protocol not marked as truncated", entry.Pattern)
		}
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		max   int
		want  string
		valid bool
	}{
		{"shorter than max", "short", 10, "short", true},
		{"ascii clipped", "abcdef", 3, "abc…", true},
		{"multi-byte clipped", "ééééé", 3, "ééé…", true},
		{"clip between runes", "aéb", 2, "aé…", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
			}
		})
	}
}

func TestPackIssueContextOrdering(t *testing.T) {
	issue := &models.Issue{
		Slug:  "x",
		Title: "X",
		Sections: []models.Section{
			{ID: "s2", Title: "Zulu", Entries: []models.Entry{{Pattern: "B"}, {Pattern: "A"}}},
			{ID: "s1", Title: "Alpha", Entries: []models.Entry{{Pattern: "D"}, {Pattern: "C"}}},
		},
	}

	pc, err := PackIssueContext(issue, config.MaxContextChars)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	var got []string
	for _, e := range pc.Entries {
		got = append(got, e.Section+"/"+e.Pattern)
	}
	want := []string{"Alpha/C", "Alpha/D", "Zulu/A", "Zulu/B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestPackIssueContextBudget(t *testing.T) {
	// Big issue, tight budget. Entries must be dropped until it fits.
	pc, err := PackIssueContext(testIssue(20), 2000)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	raw, err := pc.JSON()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if len(raw) > 2000 {
		t.Fatalf("packed size %d exceeds budget with %d entries", len(raw), len(pc.Entries))
	}
	if len(pc.Entries) == 0 {
		t.Fatal("budget dropped every entry; expected some to fit")
	}
}

func TestPackIssueContextMetaTocFloor(t *testing.T) {
	// Budget too small for anything. Meta and toc survive regardless.
	pc, err := PackIssueContext(testIssue(5), 10)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	if len(pc.Entries) != 0 {
		t.Fatalf("expected zero entries, got %d", len(pc.Entries))
	}
	if len(pc.Toc) != 2 {
		t.Fatalf("toc was dropped: %v", pc.Toc)
	}
	if pc.Meta["slug"] != "night-watch" {
		t.Fatalf("meta was dropped: %v", pc.Meta)
	}
}

func TestPackIssueContextIdempotent(t *testing.T) {
	first, err := PackIssueContext(testIssue(20), 3000)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	second, err := PackIssueContext(testIssue(20), 3000)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	a, _ := first.JSON()
	b, _ := second.JSON()
	if !bytes.Equal(a, b) {
		t.Fatal("packing the same issue twice produced different output")
	}
}

func TestPackDraftContextScoping(t *testing.T) {
	workspace := &models.Workspace{Title: "WS", Status: models.WorkspaceStatusActive}
	draft := &models.Draft{
		Outline: []models.DraftSection{
			{
				ID: "a", Path: "a", Title: "Kept", Level: 1, Content: "root text",
				Children: []models.DraftSection{
					{ID: "a1", Path: "a/a1", Title: "Child", Level: 2, Content: "child text"},
				},
			},
			{ID: "b", Path: "b", Title: "Skipped", Level: 1, Content: "other text"},
		},
	}

	pc, err := PackDraftContext(workspace, draft, "a", config.MaxContextChars)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	if len(pc.Entries) != 2 {
		t.Fatalf("expected 2 scoped entries, got %d", len(pc.Entries))
	}
	for _, e := range pc.Entries {
		if e.Section != "Kept" {
			t.Errorf("entry %q escaped the scoped subtree", e.Pattern)
		}
	}
	// Toc always lists every top-level section, scoped or not.
	if len(pc.Toc) != 2 {
		t.Fatalf("toc should list all roots, got %v", pc.Toc)
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	pc, err := PackIssueContext(testIssue(1), config.MaxContextChars)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	prompt := BuildSystemPrompt(readerIdentity, pc)

	for _, want := range []string{readerIdentity, "Table of contents", "Pattern A00", groundingInstructions} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
