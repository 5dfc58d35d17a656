package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/everstacklabs/ereuna/internal/engine"
	"github.com/everstacklabs/ereuna/internal/prompt"
)

// CanonicalSections is the fixed section order used by GenerateReport.
var CanonicalSections = []string{
	"Introduction",
	"Literature Review",
	"Methodology",
	"Results",
	"Discussion",
	"Conclusion",
}

const (
	defaultSummaryWords = 300

	// Deep research widens each word target by half again.
	deepResearchFactor = 1.5

	deepResearchInstruction = "This is a deep research request: cover the subject exhaustively, " +
		"draw on a broader range of perspectives, and provide more extensive detail and analysis."
)

// Generator builds prompts per section and drives the invocation engine.
// Later sections receive the accumulated text of earlier ones as context,
// so generation is strictly sequential.
type Generator struct {
	topic        string
	keywords     string
	questions    string
	modelID      string
	eng          *engine.Engine
	prompts      *prompt.Store
	deepResearch bool
	wordCount    int
	summaryWords int
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithDeepResearch enables the widened deep-research mode.
func WithDeepResearch(on bool) GeneratorOption {
	return func(g *Generator) { g.deepResearch = on }
}

// WithWordCount sets the default per-section word target (0 means unset).
func WithWordCount(n int) GeneratorOption {
	return func(g *Generator) { g.wordCount = n }
}

// WithSummaryWordCount sets the executive summary word target.
func WithSummaryWordCount(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.summaryWords = n
		}
	}
}

// NewGenerator creates a Generator. Topic must be non-empty; keywords and
// questions may be empty and are joined into comma-separated strings.
func NewGenerator(eng *engine.Engine, prompts *prompt.Store, modelID, topic string, keywords, questions []string, opts ...GeneratorOption) (*Generator, error) {
	if eng == nil {
		return nil, errors.New("engine is required")
	}
	if prompts == nil {
		return nil, errors.New("prompt store is required")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("topic must be a non-empty string")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("model identifier must be a non-empty string")
	}

	g := &Generator{
		topic:        strings.TrimSpace(topic),
		keywords:     joinList(keywords),
		questions:    joinList(questions),
		modelID:      modelID,
		eng:          eng,
		prompts:      prompts,
		summaryWords: defaultSummaryWords,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func joinList(items []string) string {
	var kept []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

// GenerateSection generates one section. previous carries the joined text
// of all earlier sections (empty for the first). The result is returned
// verbatim, Error-prefixed failure text included; retry happens entirely
// inside the engine.
func (g *Generator) GenerateSection(ctx context.Context, desc SectionDescriptor, previous string) string {
	return g.generateSection(ctx, desc, 0, previous)
}

func (g *Generator) generateSection(ctx context.Context, desc SectionDescriptor, index int, previous string) string {
	desc, err := desc.normalize(index)
	if err != nil {
		slog.Error("invalid section descriptor", "error", err)
		return fmt.Sprintf("Error: %v", err)
	}

	vars := g.sectionVars(desc, previous)

	var text string
	if desc.Prompt != "" {
		text, err = prompt.FormatText(desc.Prompt, vars)
	} else {
		text, err = g.prompts.Format(prompt.ResearchSection, vars)
	}
	if err != nil {
		slog.Error("prompt formatting failed", "section", desc.Title, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}

	slog.Info("generating section", "section", desc.Title)
	return g.eng.Invoke(ctx, g.modelID, text, desc.Title)
}

func (g *Generator) sectionVars(desc SectionDescriptor, previous string) map[string]string {
	wordCount := desc.WordCount
	if wordCount == 0 {
		wordCount = g.wordCount
	}

	instruction := ""
	if g.deepResearch {
		instruction = deepResearchInstruction
		if wordCount > 0 {
			wordCount = int(float64(wordCount) * deepResearchFactor)
		}
	}

	wordStr := ""
	if wordCount > 0 {
		wordStr = strconv.Itoa(wordCount)
	}
	if previous == "" {
		previous = "(none)"
	}

	return map[string]string{
		"section_name":              strings.ToLower(desc.Title),
		"topic":                     g.topic,
		"keywords":                  g.keywords,
		"research_questions":        g.questions,
		"word_count":                wordStr,
		"deep_research_instruction": instruction,
		"previous_sections":         previous,
	}
}

// GenerateReport runs the canonical section order, threading earlier
// sections into later prompts. The returned report always carries all six
// canonical keys; individual values may be Error-prefixed.
func (g *Generator) GenerateReport(ctx context.Context) *Report {
	descs := make([]SectionDescriptor, len(CanonicalSections))
	for i, title := range CanonicalSections {
		descs[i] = Describe(title)
	}
	return g.generate(ctx, descs)
}

// GenerateFromTemplate runs the sections of a custom report template. If
// any descriptor is invalid, every requested section is populated with a
// uniform failure placeholder and no API call is made.
func (g *Generator) GenerateFromTemplate(ctx context.Context, tmpl *ReportTemplate) *Report {
	return g.generate(ctx, tmpl.Sections)
}

func (g *Generator) generate(ctx context.Context, descs []SectionDescriptor) *Report {
	// Fail fast: validate every descriptor before the first API call, so a
	// bad template never leaves partial side effects.
	titles := make([]string, len(descs))
	for i, desc := range descs {
		normalized, err := desc.normalize(i)
		if err != nil {
			slog.Error("report generation rejected", "error", err)
			return failedReport(titlesOrCanonical(descs), fmt.Sprintf("Error: Report generation failed - %v", err))
		}
		titles[i] = normalized.Title
	}

	slog.Info("starting report generation", "topic", g.topic, "sections", len(descs))

	rep := NewReport()
	var previous strings.Builder
	for i, desc := range descs {
		text := g.generateSection(ctx, desc, i, previous.String())
		rep.Set(titles[i], text)
		if !engine.IsErrorText(text) {
			previous.WriteString("## " + titles[i] + "\n\n" + text + "\n\n")
		}
	}

	if failed := rep.Failed(); len(failed) > 0 {
		slog.Warn("some sections failed to generate", "sections", strings.Join(failed, ", "))
	} else {
		slog.Info("all report sections generated")
	}
	return rep
}

// titlesOrCanonical returns the descriptor titles where present, falling
// back to positional names, so a failed report still has a complete key
// set.
func titlesOrCanonical(descs []SectionDescriptor) []string {
	titles := make([]string, len(descs))
	for i, desc := range descs {
		title := strings.TrimSpace(desc.Title)
		if title == "" {
			title = fmt.Sprintf("Section %d", i+1)
		}
		titles[i] = title
	}
	return titles
}

func failedReport(titles []string, placeholder string) *Report {
	rep := NewReport()
	for _, title := range titles {
		rep.Set(title, placeholder)
	}
	return rep
}

// ExecutiveSummary generates a summary of the whole report using the
// executive_summary template.
func (g *Generator) ExecutiveSummary(ctx context.Context, rep *Report) string {
	detail := "concise"
	words := g.summaryWords
	instruction := ""
	if g.deepResearch {
		detail = "detailed"
		words = int(float64(words) * deepResearchFactor)
		instruction = deepResearchInstruction
	}

	text, err := g.prompts.Format(prompt.ExecutiveSummary, map[string]string{
		"summary_detail_instruction": detail,
		"summary_word_count":         strconv.Itoa(words),
		"deep_research_instruction":  instruction,
		"full_report_content":        rep.Joined(),
	})
	if err != nil {
		slog.Error("prompt formatting failed", "template", prompt.ExecutiveSummary, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	return g.eng.Invoke(ctx, g.modelID, text, "Executive Summary")
}

// SummarizeTable generates a concise summary of tabular data using the
// table_summary template.
func (g *Generator) SummarizeTable(ctx context.Context, tableContent string) string {
	return SummarizeTable(ctx, g.eng, g.prompts, g.modelID, tableContent)
}

// SummarizeTable condenses tabular data through the table_summary
// template. The chat web fallback uses it without a full Generator.
func SummarizeTable(ctx context.Context, eng *engine.Engine, prompts *prompt.Store, modelID, tableContent string) string {
	text, err := prompts.Format(prompt.TableSummary, map[string]string{
		"table_content": tableContent,
	})
	if err != nil {
		slog.Error("prompt formatting failed", "template", prompt.TableSummary, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	return eng.Invoke(ctx, modelID, text, "table summary")
}
