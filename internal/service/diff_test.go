package service

import (
	"reflect"
	"testing"

	"fieldguide/internal/domain/models"
)

func sampleContent() map[string]interface{} {
	return map[string]interface{}{
		"title": "Field Notes",
		"meta": map[string]interface{}{
			"version": "1",
		},
		"empty": nil,
		"sections": []interface{}{
			map[string]interface{}{
				"title": "Opening",
				"tags":  []interface{}{"a", "b"},
			},
		},
	}
}

func TestApplyDiffReplaceNested(t *testing.T) {
	content := sampleContent()

	result, ok := ApplyDiff(content, models.DiffOp{
		Operation: models.DiffOpReplace,
		Path:      "meta.version",
		NewValue:  "2",
	})
	if !ok {
		t.Fatal("expected op to apply")
	}

	meta, _ := result["meta"].(map[string]interface{})
	if meta["version"] != "2" {
		t.Errorf("version = %v, want 2", meta["version"])
	}
}

func TestApplyDiffDoesNotMutateInput(t *testing.T) {
	content := sampleContent()
	before := deepCopyMap(content)

	_, ok := ApplyDiff(content, models.DiffOp{
		Operation: models.DiffOpReplace,
		Path:      "sections.0.title",
		NewValue:  "Changed",
	})
	if !ok {
		t.Fatal("expected op to apply")
	}
	if !reflect.DeepEqual(content, before) {
		t.Error("input content was mutated")
	}
}

func TestApplyDiffCreatesFinalKeyOnly(t *testing.T) {
	content := sampleContent()

	result, ok := ApplyDiff(content, models.DiffOp{
		Operation: models.DiffOpReplace,
		Path:      "meta.author",
		NewValue:  "ranger",
	})
	if !ok {
		t.Fatal("expected op to apply")
	}

	meta, _ := result["meta"].(map[string]interface{})
	if meta["author"] != "ranger" {
		t.Errorf("meta.author = %v, want ranger", meta["author"])
	}
	if _, exists := content["meta"].(map[string]interface{})["author"]; exists {
		t.Error("input map gained the new key")
	}
}

func TestApplyDiffMissingIntermediateIsNoOp(t *testing.T) {
	content := sampleContent()
	before := deepCopyMap(content)

	result, ok := ApplyDiff(content, models.DiffOp{
		Operation: models.DiffOpReplace,
		Path:      "chapters.0.title",
		NewValue:  "x",
	})
	if ok {
		t.Fatal("expected op against a missing container to fail")
	}
	if !reflect.DeepEqual(result, before) {
		t.Error("missing intermediate fabricated structure in the result")
	}
	if _, exists := content["chapters"]; exists {
		t.Error("missing intermediate was created in the input")
	}
}

func TestApplyDiffAddAppendsToList(t *testing.T) {
	content := sampleContent()

	result, ok := ApplyDiff(content, models.DiffOp{
		Operation: models.DiffOpAdd,
		Path:      "sections.0.tags",
		NewValue:  "c",
	})
	if !ok {
		t.Fatal("expected op to apply")
	}

	sections := result["sections"].([]interface{})
	tags := sections[0].(map[string]interface{})["tags"].([]interface{})
	want := []interface{}{"a", "b", "c"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
}

func TestApplyDiffAddToScalarOverwrites(t *testing.T) {
	content := sampleContent()

	result, ok := ApplyDiff(content, models.DiffOp{
		Operation: models.DiffOpAdd,
		Path:      "title",
		NewValue:  "Replaced",
	})
	if !ok {
		t.Fatal("expected op to apply")
	}
	if result["title"] != "Replaced" {
		t.Errorf("title = %v, want Replaced", result["title"])
	}
}

func TestApplyDiffFailures(t *testing.T) {
	tests := []struct {
		name string
		op   models.DiffOp
	}{
		{
			name: "empty path",
			op:   models.DiffOp{Operation: models.DiffOpReplace, Path: "", NewValue: "x"},
		},
		{
			name: "unknown operation",
			op:   models.DiffOp{Operation: "remove", Path: "title", NewValue: "x"},
		},
		{
			name: "missing intermediate container",
			op:   models.DiffOp{Operation: models.DiffOpReplace, Path: "nope.deep.key", NewValue: "x"},
		},
		{
			name: "nil intermediate",
			op:   models.DiffOp{Operation: models.DiffOpReplace, Path: "empty.key", NewValue: "x"},
		},
		{
			name: "list index out of range",
			op:   models.DiffOp{Operation: models.DiffOpReplace, Path: "sections.5.title", NewValue: "x"},
		},
		{
			name: "non-numeric list key",
			op:   models.DiffOp{Operation: models.DiffOpReplace, Path: "sections.first.title", NewValue: "x"},
		},
		{
			name: "scalar in the middle of the path",
			op:   models.DiffOp{Operation: models.DiffOpReplace, Path: "title.sub", NewValue: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := sampleContent()
			before := deepCopyMap(content)

			result, ok := ApplyDiff(content, tt.op)
			if ok {
				t.Fatal("expected op to fail")
			}
			if !reflect.DeepEqual(result, before) {
				t.Error("failed op changed the returned content")
			}
			if !reflect.DeepEqual(content, before) {
				t.Error("failed op mutated the input")
			}
		})
	}
}

func TestApplyDiffOpsThreadsAndReportsChange(t *testing.T) {
	content := sampleContent()

	result, changed := ApplyDiffOps(content, []models.DiffOp{
		{Operation: models.DiffOpReplace, Path: "title", NewValue: "First"},
		{Operation: models.DiffOpReplace, Path: "sections.9.title", NewValue: "skipped"},
		{Operation: models.DiffOpReplace, Path: "title", NewValue: "Second"},
	})
	if !changed {
		t.Fatal("expected changed = true")
	}
	if result["title"] != "Second" {
		t.Errorf("title = %v, want Second", result["title"])
	}
}

func TestApplyDiffOpsAllMisses(t *testing.T) {
	content := sampleContent()

	result, changed := ApplyDiffOps(content, []models.DiffOp{
		{Operation: "remove", Path: "title"},
		{Operation: models.DiffOpReplace, Path: "sections.9", NewValue: "x"},
	})
	if changed {
		t.Error("expected changed = false")
	}
	if !reflect.DeepEqual(result, content) {
		t.Error("expected original content back when every op misses")
	}
}
