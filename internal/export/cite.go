package export

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source describes one bibliographic source. Empty fields fall back to
// conventional placeholders per style.
type Source struct {
	Author    string `yaml:"author" json:"author"`
	Year      string `yaml:"year" json:"year"`
	Title     string `yaml:"title" json:"title"`
	Container string `yaml:"container,omitempty" json:"container,omitempty"`
	Publisher string `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	URL       string `yaml:"url,omitempty" json:"url,omitempty"`
}

// LoadSources reads a YAML source list for bibliography generation.
// The file holds a top-level `sources:` sequence of Source entries.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file: %w", err)
	}
	var file struct {
		Sources []Source `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing sources file %s: %w", path, err)
	}
	return file.Sources, nil
}

// Citation styles.
const (
	StyleAPA     = "APA"
	StyleMLA     = "MLA"
	StyleChicago = "Chicago"
)

// FormatCitation renders one source in the given style. Unknown styles
// fall back to APA.
func FormatCitation(src Source, style string) string {
	switch strings.ToUpper(style) {
	case "MLA":
		return formatMLA(src)
	case "CHICAGO":
		return formatChicago(src)
	default:
		return formatAPA(src)
	}
}

// Bibliography renders all sources in the given style, sorted.
func Bibliography(sources []Source, style string) string {
	if len(sources) == 0 {
		return "No sources provided for bibliography generation."
	}
	entries := make([]string, 0, len(sources))
	for _, src := range sources {
		entries = append(entries, FormatCitation(src, style))
	}
	sort.Strings(entries)
	return strings.Join(entries, "\n\n")
}

func formatAPA(src Source) string {
	c := fmt.Sprintf("%s (%s). %s. %s.",
		orElse(src.Author, "N.D."),
		orElse(src.Year, "n.d."),
		orElse(src.Title, "No title available"),
		orElse(src.Publisher, "N.P."))
	if src.URL != "" {
		c += " Retrieved from " + src.URL
	}
	return c
}

func formatMLA(src Source) string {
	c := fmt.Sprintf("%q %s, %s, %s,",
		orElse(src.Title, "No title available"),
		src.Container, src.Publisher,
		orElse(src.Year, "n.d."))
	if src.URL != "" {
		c += " " + src.URL + "."
	}
	return c
}

func formatChicago(src Source) string {
	c := fmt.Sprintf("%s. %q %s, %s.",
		orElse(src.Author, "N.D."),
		orElse(src.Title, "No title available"),
		orElse(src.Publisher, "N.P."),
		orElse(src.Year, "n.d."))
	if src.URL != "" {
		c += " " + src.URL + "."
	}
	return c
}

func orElse(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
