// Package report sequences per-section generation calls and accumulates
// the results into an ordered report.
package report

import (
	"strings"

	"github.com/everstacklabs/ereuna/internal/engine"
)

// Report is an ordered mapping from section title to generated body text.
// Insertion order is generation order; setting an existing title replaces
// its text in place. A body beginning with "Error" marks that section as
// failed; the report as a whole may be partially failed.
type Report struct {
	titles   []string
	sections map[string]string
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{sections: make(map[string]string)}
}

// Set adds or replaces a section.
func (r *Report) Set(title, text string) {
	if _, ok := r.sections[title]; !ok {
		r.titles = append(r.titles, title)
	}
	r.sections[title] = text
}

// Text returns the body for title.
func (r *Report) Text(title string) (string, bool) {
	text, ok := r.sections[title]
	return text, ok
}

// Titles returns section titles in insertion order.
func (r *Report) Titles() []string {
	out := make([]string, len(r.titles))
	copy(out, r.titles)
	return out
}

// Len returns the number of sections.
func (r *Report) Len() int {
	return len(r.titles)
}

// Joined returns the whole report as "## title\n\nbody" blocks, the shape
// consumed by chat grounding and the notes export.
func (r *Report) Joined() string {
	blocks := make([]string, 0, len(r.titles))
	for _, title := range r.titles {
		blocks = append(blocks, "## "+title+"\n\n"+r.sections[title])
	}
	return strings.Join(blocks, "\n\n")
}

// Failed returns the titles of sections whose text carries the Error
// prefix.
func (r *Report) Failed() []string {
	var failed []string
	for _, title := range r.titles {
		if engine.IsErrorText(r.sections[title]) {
			failed = append(failed, title)
		}
	}
	return failed
}

// Sections returns a title→text copy, losing order; meant for callers that
// serialize to JSON alongside Titles().
func (r *Report) Sections() map[string]string {
	out := make(map[string]string, len(r.sections))
	for title, text := range r.sections {
		out[title] = text
	}
	return out
}
