package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatSubstitutesAllPlaceholders(t *testing.T) {
	s := NewStore()
	got, err := s.Format(RelevanceCheck, map[string]string{
		"research_topic": "Effects of soil erosion",
		"user_query":     "How does erosion affect crop yield?",
	})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(got, "'Effects of soil erosion'") {
		t.Errorf("formatted text missing topic: %q", got)
	}
	if !strings.Contains(got, "How does erosion affect crop yield?") {
		t.Errorf("formatted text missing query: %q", got)
	}
	if strings.Contains(got, "{") {
		t.Errorf("formatted text still contains placeholder tokens: %q", got)
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	s := NewStore()
	vars := map[string]string{
		"research_topic": "Topic",
		"user_query":     "Query",
	}
	first, err := s.Format(RelevanceCheck, vars)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	second, err := s.Format(RelevanceCheck, vars)
	if err != nil {
		t.Fatalf("Format() error on second call = %v", err)
	}
	if first != second {
		t.Errorf("repeated Format() differs:\n%q\n%q", first, second)
	}
}

func TestFormatMissingPlaceholderNamesTheKey(t *testing.T) {
	s := NewStore()
	_, err := s.Format(RelevanceCheck, map[string]string{
		"research_topic": "Topic",
	})
	var missing *MissingPlaceholderError
	if !errors.As(err, &missing) {
		t.Fatalf("Format() error = %v, want *MissingPlaceholderError", err)
	}
	if missing.Key != "user_query" {
		t.Errorf("missing.Key = %q, want %q", missing.Key, "user_query")
	}
	if missing.Template != RelevanceCheck {
		t.Errorf("missing.Template = %q, want %q", missing.Template, RelevanceCheck)
	}
}

func TestFormatUnknownTemplate(t *testing.T) {
	s := NewStore()
	_, err := s.Format("no_such_template", nil)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Format() error = %v, want ErrTemplateNotFound", err)
	}
}

func TestFormatTextInlineOverride(t *testing.T) {
	got, err := FormatText("Write about {topic} in {word_count} words.", map[string]string{
		"topic":      "soil erosion",
		"word_count": "500",
	})
	if err != nil {
		t.Fatalf("FormatText() error = %v", err)
	}
	want := "Write about soil erosion in 500 words."
	if got != want {
		t.Errorf("FormatText() = %q, want %q", got, want)
	}

	_, err = FormatText("Write about {topic}.", nil)
	var missing *MissingPlaceholderError
	if !errors.As(err, &missing) || missing.Key != "topic" {
		t.Errorf("FormatText() error = %v, want missing placeholder %q", err, "topic")
	}
}

func TestDefaultTemplatesPresent(t *testing.T) {
	s := NewStore()
	for _, name := range []string{
		ResearchSection, ExecutiveSummary, ChatResponse,
		RelevanceCheck, WebSearchResponse, TableSummary,
	} {
		if _, ok := s.Get(name); !ok {
			t.Errorf("default template %q missing", name)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	s := NewStore()
	got := s.Placeholders(ChatResponse)
	want := []string{"research_content", "user_query"}
	if len(got) != len(want) {
		t.Fatalf("Placeholders() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Placeholders()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if s.Placeholders("no_such_template") != nil {
		t.Error("Placeholders() for unknown template should be nil")
	}
}

func TestLoadDirOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	override := "prompt: |\n  Custom table prompt for {table_content}\n"
	if err := os.WriteFile(filepath.Join(dir, TableSummary+".yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	// A malformed file must be skipped, not fail the load.
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("prompt: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore()
	if err := s.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	text, ok := s.Get(TableSummary)
	if !ok || !strings.Contains(text, "Custom table prompt") {
		t.Errorf("override not applied, got %q", text)
	}
	if _, ok := s.Get("broken"); ok {
		t.Error("malformed template should not be loaded")
	}
}

func TestSaveDefaultsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if err := SaveDefaults(dir); err != nil {
		t.Fatalf("SaveDefaults() error = %v", err)
	}

	s := &Store{templates: make(map[string]string)}
	if err := s.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	for name := range defaultTemplates {
		text, ok := s.Get(name)
		if !ok {
			t.Errorf("template %q not written", name)
			continue
		}
		if strings.TrimSpace(text) != strings.TrimSpace(defaultTemplates[name]) {
			t.Errorf("template %q round trip mismatch", name)
		}
	}
}
