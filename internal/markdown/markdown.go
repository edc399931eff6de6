// Package markdown holds small helpers for the raw markdown admins
// paste into the import flow. Parsing is lenient: imported text is
// arbitrary and a helper that errors on sloppy markdown would reject
// exactly the material the transform step exists to clean up.
package markdown

import (
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// SplitFrontmatter separates a leading YAML frontmatter block from the
// markdown body. ok is false when there is no well-formed block, in
// which case body is the input unchanged.
func SplitFrontmatter(content string) (meta map[string]interface{}, body string, ok bool) {
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return nil, content, false
	}

	lines := strings.Split(content, "\n")
	closing := 0
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closing = i
			break
		}
	}
	if closing == 0 {
		return nil, content, false
	}

	raw := strings.Join(lines[1:closing], "\n")
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, content, false
	}

	return meta, strings.Join(lines[closing+1:], "\n"), true
}

// Title derives a display name for pasted content: the frontmatter
// title (or name) when present, otherwise the first ATX heading.
// Returns "" when neither exists.
func Title(content string) string {
	meta, body, ok := SplitFrontmatter(content)
	if ok {
		for _, key := range []string{"title", "name"} {
			if v, exists := meta[key]; exists {
				if s, isStr := v.(string); isStr && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}

// CountWords counts prose words in a markdown string, ignoring code
// blocks and formatting syntax.
func CountWords(content string) int {
	_, body, _ := SplitFrontmatter(content)
	text := stripSyntax(body)

	count := 0
	for _, token := range strings.FieldsFunc(text, unicode.IsSpace) {
		if strings.TrimSpace(token) != "" {
			count++
		}
	}
	return count
}

func stripSyntax(text string) string {
	text = removeFencedBlocks(text)

	for _, marker := range []string{"`", "**", "*", "__", "_", "~~", "#", ">"} {
		text = strings.ReplaceAll(text, marker, "")
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		if len(line) > 2 && unicode.IsDigit(rune(line[0])) && line[1] == '.' {
			line = line[2:]
		}
		if line == "---" || line == "***" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

func removeFencedBlocks(text string) string {
	for {
		start := strings.Index(text, "```")
		if start == -1 {
			return text
		}
		end := strings.Index(text[start+3:], "```")
		if end == -1 {
			return text
		}
		text = text[:start] + text[start+3+end+3:]
	}
}
