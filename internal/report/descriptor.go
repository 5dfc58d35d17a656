package report

import (
	"fmt"
	"strings"
)

// SectionDescriptor describes one section to generate: a plain title, or a
// title with a prompt template override and a word-count target.
type SectionDescriptor struct {
	Title     string `yaml:"title" json:"title"`
	Prompt    string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	WordCount int    `yaml:"word_count,omitempty" json:"word_count,omitempty"`
}

// Describe wraps a bare section title.
func Describe(title string) SectionDescriptor {
	return SectionDescriptor{Title: title}
}

// normalize validates a descriptor and fills its display title. A
// descriptor with neither a title nor a prompt override is rejected before
// any API call is attempted. index is the section's position, used to
// derive a title for prompt-only descriptors.
func (d SectionDescriptor) normalize(index int) (SectionDescriptor, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Prompt = strings.TrimSpace(d.Prompt)

	if d.Title == "" && d.Prompt == "" {
		return d, fmt.Errorf("section %d has neither a title nor a prompt", index+1)
	}
	if d.Title == "" {
		d.Title = fmt.Sprintf("Section %d", index+1)
	}
	if d.WordCount < 0 {
		return d, fmt.Errorf("section %q has a negative word count", d.Title)
	}
	return d, nil
}
