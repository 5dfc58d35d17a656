package report

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()

	good := `name: literature-survey
description: Survey-style report
sections:
  - title: Background
  - title: Key Papers
    word_count: 800
  - prompt: "Summarize open problems around {topic}."
`
	if err := os.WriteFile(filepath.Join(dir, "survey.yaml"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	// Missing name, must be skipped.
	if err := os.WriteFile(filepath.Join(dir, "anon.yaml"), []byte("sections:\n  - title: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// No sections, must be skipped.
	if err := os.WriteFile(filepath.Join(dir, "empty.yaml"), []byte("name: empty\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Not YAML, must be ignored by extension.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	templates, err := LoadTemplates(dir)
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("loaded %d templates, want 1: %v", len(templates), TemplateNames(templates))
	}

	tmpl := templates["literature-survey"]
	if tmpl == nil {
		t.Fatal("template literature-survey not loaded")
	}
	if len(tmpl.Sections) != 3 {
		t.Errorf("sections = %d, want 3", len(tmpl.Sections))
	}
	if tmpl.Sections[1].WordCount != 800 {
		t.Errorf("word_count = %d, want 800", tmpl.Sections[1].WordCount)
	}
}

func TestLoadTemplatesMissingDir(t *testing.T) {
	if _, err := LoadTemplates(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing directory should be an error")
	}
}

func TestTemplateNamesSorted(t *testing.T) {
	templates := map[string]*ReportTemplate{
		"zeta":  {Name: "zeta"},
		"alpha": {Name: "alpha"},
	}
	names := TemplateNames(templates)
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("TemplateNames() = %v, want sorted", names)
	}
}
