package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/everstacklabs/ereuna/internal/report"
)

// Manifest records what a write produced, alongside the report files.
type Manifest struct {
	Topic       string    `yaml:"topic"`
	Model       string    `yaml:"model,omitempty"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Sections    []string  `yaml:"sections"`
	Failed      []string  `yaml:"failed,omitempty"`
	Files       []string  `yaml:"files"`
}

// Writer persists a report under a base directory, one file per
// requested format plus a YAML snapshot and a manifest.
type Writer struct {
	dir   string
	model string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir, model string) *Writer {
	return &Writer{dir: dir, model: model}
}

// Write renders the report with each renderer and writes the results,
// the raw sections as YAML, and a manifest. It returns the paths of the
// files written.
func (w *Writer) Write(rep *report.Report, topic string, renderers ...Renderer) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	base := Slug(topic) + "_research_report"
	var files []string

	for _, r := range renderers {
		var buf bytes.Buffer
		if err := r.Render(&buf, rep, topic); err != nil {
			return files, fmt.Errorf("rendering %s: %w", r.Format(), err)
		}
		path := filepath.Join(w.dir, base+"."+r.Format())
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return files, fmt.Errorf("writing %s: %w", path, err)
		}
		files = append(files, path)
	}

	snapshot := struct {
		Topic    string            `yaml:"topic"`
		Sections map[string]string `yaml:"sections"`
	}{Topic: topic, Sections: rep.Sections()}
	data, err := yaml.Marshal(&snapshot)
	if err != nil {
		return files, fmt.Errorf("marshaling report: %w", err)
	}
	yamlPath := filepath.Join(w.dir, base+".yaml")
	if err := os.WriteFile(yamlPath, data, 0o644); err != nil {
		return files, fmt.Errorf("writing %s: %w", yamlPath, err)
	}
	files = append(files, yamlPath)

	manifest := Manifest{
		Topic:       topic,
		Model:       w.model,
		GeneratedAt: time.Now().UTC(),
		Sections:    rep.Titles(),
		Failed:      rep.Failed(),
		Files:       files,
	}
	manifestData, err := yaml.Marshal(&manifest)
	if err != nil {
		return files, fmt.Errorf("marshaling manifest: %w", err)
	}
	manifestPath := filepath.Join(w.dir, "manifest.yaml")
	if err := os.WriteFile(manifestPath, manifestData, 0o644); err != nil {
		return files, fmt.Errorf("writing manifest: %w", err)
	}
	files = append(files, manifestPath)

	slog.Info("report exported", "topic", topic, "files", len(files), "dir", w.dir)
	return files, nil
}

// LoadSnapshot reads a report YAML snapshot written by Write. Section
// order inside the snapshot map is not preserved; canonical titles are
// restored first, any extras follow sorted.
func LoadSnapshot(path string) (string, *report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snapshot struct {
		Topic    string            `yaml:"topic"`
		Sections map[string]string `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return "", nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	rep := report.NewReport()
	for _, title := range report.CanonicalSections {
		if text, ok := snapshot.Sections[title]; ok {
			rep.Set(title, text)
			delete(snapshot.Sections, title)
		}
	}
	extras := make([]string, 0, len(snapshot.Sections))
	for title := range snapshot.Sections {
		extras = append(extras, title)
	}
	sort.Strings(extras)
	for _, title := range extras {
		rep.Set(title, snapshot.Sections[title])
	}
	return snapshot.Topic, rep, nil
}

// Slug turns a topic into a filesystem-safe name.
func Slug(topic string) string {
	s := strings.TrimSpace(strings.ToLower(topic))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	out = strings.Trim(out, "_")
	if out == "" {
		out = "report"
	}
	return out
}
