package markdown

import "testing"

func TestSplitFrontmatter(t *testing.T) {
	meta, body, ok := SplitFrontmatter("---\ntitle: Trail Notes\ntags: [field, debug]\n---\n# Heading\n\nBody text.")
	if !ok {
		t.Fatal("expected frontmatter to parse")
	}
	if meta["title"] != "Trail Notes" {
		t.Errorf("title = %v, want Trail Notes", meta["title"])
	}
	if body != "# Heading\n\nBody text." {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontmatterLenient(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no frontmatter", "# Just markdown"},
		{"unclosed block", "---\ntitle: x\nno closing"},
		{"invalid yaml", "---\n\t: :\n---\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, body, ok := SplitFrontmatter(tt.content)
			if ok {
				t.Error("expected ok = false")
			}
			if body != tt.content {
				t.Errorf("body = %q, want the input unchanged", body)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"frontmatter title", "---\ntitle: From Meta\n---\n# From Heading", "From Meta"},
		{"frontmatter name fallback", "---\nname: Named\n---\nbody", "Named"},
		{"first heading", "intro line\n\n## Deep Heading\ntext", "Deep Heading"},
		{"nothing", "plain text only", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.content); got != tt.want {
				t.Errorf("Title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"plain", "three short words", 3},
		{"formatting stripped", "# Heading\n\n**bold** and _italic_ text", 5},
		{"code blocks ignored", "before\n```\nfunc main() {}\n```\nafter", 2},
		{"frontmatter ignored", "---\ntitle: Meta Words Here\n---\nonly these count", 3},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.content); got != tt.want {
				t.Errorf("CountWords = %d, want %d", got, tt.want)
			}
		})
	}
}
