// Package prompt holds named prompt templates and performs placeholder
// substitution. Templates are plain strings with {placeholder} tokens.
package prompt

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrTemplateNotFound is returned by Format for an unknown template name.
var ErrTemplateNotFound = errors.New("prompt template not found")

// MissingPlaceholderError reports a placeholder the caller did not supply.
type MissingPlaceholderError struct {
	Template string
	Key      string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("missing data for prompt placeholder %q in template %q", e.Key, e.Template)
}

var placeholderRe = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// Store holds named prompt templates.
type Store struct {
	templates map[string]string
}

// NewStore returns a store preloaded with the default templates.
func NewStore() *Store {
	s := &Store{templates: make(map[string]string, len(defaultTemplates))}
	for name, text := range defaultTemplates {
		s.templates[name] = text
	}
	return s
}

// Get returns the template text for name.
func (s *Store) Get(name string) (string, bool) {
	text, ok := s.templates[name]
	return text, ok
}

// Set adds or replaces a template.
func (s *Store) Set(name, text string) {
	s.templates[name] = text
}

// Names returns the names of all loaded templates.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	return names
}

// Format substitutes vars into the named template. Every placeholder the
// template references must be present in vars; the first missing one is
// reported by name.
func (s *Store) Format(name string, vars map[string]string) (string, error) {
	text, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	var missing *MissingPlaceholderError
	out := placeholderRe.ReplaceAllStringFunc(text, func(token string) string {
		key := token[1 : len(token)-1]
		value, present := vars[key]
		if !present && missing == nil {
			missing = &MissingPlaceholderError{Template: name, Key: key}
		}
		return value
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}

// FormatText substitutes vars into a raw template string that is not held
// by a store, such as a per-section prompt override. Same placeholder rules
// as Format.
func FormatText(text string, vars map[string]string) (string, error) {
	var missing *MissingPlaceholderError
	out := placeholderRe.ReplaceAllStringFunc(text, func(token string) string {
		key := token[1 : len(token)-1]
		value, present := vars[key]
		if !present && missing == nil {
			missing = &MissingPlaceholderError{Template: "(inline)", Key: key}
		}
		return value
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}

// Placeholders returns the placeholder keys referenced by the named template,
// in order of first appearance.
func (s *Store) Placeholders(name string) []string {
	text, ok := s.templates[name]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var keys []string
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// templateFile is the on-disk YAML shape of a single template.
type templateFile struct {
	Prompt      string `yaml:"prompt"`
	Description string `yaml:"description,omitempty"`
}

// LoadDir overlays templates from *.yaml files in dir onto the store. The
// file name (without extension) becomes the template name. Files that fail
// to parse are skipped with a warning.
func (s *Store) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading prompt dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("skipping prompt template", "path", path, "error", err)
			continue
		}
		var tf templateFile
		if err := yaml.Unmarshal(data, &tf); err != nil {
			slog.Warn("skipping malformed prompt template", "path", path, "error", err)
			continue
		}
		if strings.TrimSpace(tf.Prompt) == "" {
			slog.Warn("skipping empty prompt template", "path", path)
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		s.templates[name] = tf.Prompt
		slog.Info("loaded prompt template", "name", name)
	}
	return nil
}

// SaveDefaults writes the default template set to dir as YAML files,
// creating the directory if needed. Existing files are not overwritten.
func SaveDefaults(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating prompt dir: %w", err)
	}
	for name, text := range defaultTemplates {
		path := filepath.Join(dir, name+".yaml")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		data, err := yaml.Marshal(templateFile{Prompt: text, Description: defaultDescriptions[name]})
		if err != nil {
			return fmt.Errorf("marshaling template %s: %w", name, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing template %s: %w", name, err)
		}
	}
	return nil
}
