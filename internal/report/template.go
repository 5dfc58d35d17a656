package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReportTemplate is a named, reusable section plan loaded from a YAML
// file: a section list with optional per-section prompt and word-count
// overrides.
type ReportTemplate struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Sections    []SectionDescriptor `yaml:"sections"`
}

// LoadTemplates reads all *.yaml report templates from dir, keyed by their
// declared name. Files without a name or with no sections are skipped with
// a warning.
func LoadTemplates(dir string) (map[string]*ReportTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template dir: %w", err)
	}

	templates := make(map[string]*ReportTemplate)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("skipping report template", "path", path, "error", err)
			continue
		}
		var tmpl ReportTemplate
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			slog.Warn("skipping malformed report template", "path", path, "error", err)
			continue
		}
		if tmpl.Name == "" {
			slog.Warn("skipping report template without a name", "path", path)
			continue
		}
		if len(tmpl.Sections) == 0 {
			slog.Warn("skipping report template without sections", "name", tmpl.Name)
			continue
		}
		templates[tmpl.Name] = &tmpl
		slog.Info("loaded report template", "name", tmpl.Name, "sections", len(tmpl.Sections))
	}
	return templates, nil
}

// TemplateNames returns sorted template names.
func TemplateNames(templates map[string]*ReportTemplate) []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
