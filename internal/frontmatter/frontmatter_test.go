package frontmatter

import (
	"testing"
)

func TestSplit_FieldsAndBody(t *testing.T) {
	input := "---\ntitle: Hello\ntags:\n  - go\n  - md\n---\n# Hello\nBody text.\n"
	fields, body, ok := Split(input)
	if !ok {
		t.Fatal("frontmatter not detected")
	}
	if len(fields) != 2 {
		t.Fatalf("fields = %+v", fields)
	}
	if fields[0] != (Field{Key: "title", Value: "Hello"}) {
		t.Errorf("fields[0] = %+v", fields[0])
	}
	if fields[1] != (Field{Key: "tags", Value: "go, md"}) {
		t.Errorf("fields[1] = %+v", fields[1])
	}
	if body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplit_NoFrontmatter(t *testing.T) {
	input := "# Just a heading\nSome text.\n"
	fields, body, ok := Split(input)
	if ok || fields != nil || body != input {
		t.Errorf("got %v %q %v", fields, body, ok)
	}
}

func TestSplit_Unclosed(t *testing.T) {
	input := "---\ntitle: x\nno end\n"
	if _, body, ok := Split(input); ok || body != input {
		t.Errorf("unclosed block accepted: %q", body)
	}
}

func TestSplit_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	if _, body, ok := Split(input); ok || body != input {
		t.Errorf("invalid yaml accepted")
	}
}

func TestSplit_NotAMapping(t *testing.T) {
	input := "---\n- a\n- b\n---\nBody\n"
	if _, _, ok := Split(input); ok {
		t.Error("sequence accepted as frontmatter")
	}
}

func TestSplit_EmptyBlock(t *testing.T) {
	fields, body, ok := Split("---\n---\nBody")
	if !ok || len(fields) != 0 || body != "Body" {
		t.Errorf("got %v %q %v", fields, body, ok)
	}
}

func TestSplit_NestedMappingFlattened(t *testing.T) {
	fields, _, ok := Split("---\nauthor:\n  name: Ann\n---\n")
	if !ok || len(fields) != 1 {
		t.Fatalf("fields = %+v", fields)
	}
	if fields[0].Value != "name: Ann" {
		t.Errorf("value = %q", fields[0].Value)
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"frontmatter wins", "---\ntitle: Meta\n---\n# Heading\n", "Meta"},
		{"first h1", "intro\n# First\n# Second\n", "First"},
		{"closing hashes", "# Title ##\n", "Title"},
		{"h2 ignored", "## Sub\n", ""},
		{"fenced heading ignored", "```\n# not a title\n```\n# Real\n", "Real"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.text); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}
