// Package export renders generated reports to files in several formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/everstacklabs/ereuna/internal/report"
)

// Renderer writes a report to w in some output format.
type Renderer interface {
	// Render writes the report. Format is the renderer's file extension
	// without the dot.
	Render(w io.Writer, rep *report.Report, topic string) error
	Format() string
}

// MarkdownRenderer writes the report as a Markdown document with a
// title, one H2 per section, and an optional summary and bibliography.
type MarkdownRenderer struct {
	Summary      string
	Bibliography string
}

func (r *MarkdownRenderer) Format() string { return "md" }

func (r *MarkdownRenderer) Render(w io.Writer, rep *report.Report, topic string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", topic)
	fmt.Fprintf(&b, "_Generated %s_\n\n", time.Now().Format("2006-01-02"))
	if r.Summary != "" {
		b.WriteString("## Executive Summary\n\n")
		b.WriteString(strings.TrimSpace(r.Summary))
		b.WriteString("\n\n")
	}
	for _, title := range rep.Titles() {
		text, _ := rep.Text(title)
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, strings.TrimSpace(text))
	}
	if r.Bibliography != "" {
		b.WriteString("## References\n\n")
		b.WriteString(strings.TrimSpace(r.Bibliography))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// TextRenderer writes the report as plain research notes, sections
// separated by a dashed rule.
type TextRenderer struct{}

func (TextRenderer) Format() string { return "txt" }

func (TextRenderer) Render(w io.Writer, rep *report.Report, topic string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Research Notes: %s\n", topic)
	b.WriteString(strings.Repeat("=", len(topic)+16) + "\n\n")
	for _, title := range rep.Titles() {
		text, _ := rep.Text(title)
		fmt.Fprintf(&b, "%s\n%s\n%s\n\n", title, strings.Repeat("-", len(title)), strings.TrimSpace(text))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
