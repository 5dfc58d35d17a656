package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/everstacklabs/ereuna/internal/cache"
	"github.com/everstacklabs/ereuna/internal/chat"
	"github.com/everstacklabs/ereuna/internal/config"
	"github.com/everstacklabs/ereuna/internal/engine"
	"github.com/everstacklabs/ereuna/internal/export"
	"github.com/everstacklabs/ereuna/internal/httpclient"
	"github.com/everstacklabs/ereuna/internal/metrics"
	"github.com/everstacklabs/ereuna/internal/prompt"
	"github.com/everstacklabs/ereuna/internal/provider"
	_ "github.com/everstacklabs/ereuna/internal/provider/providers/anthropic" // register Claude factory
	_ "github.com/everstacklabs/ereuna/internal/provider/providers/gemini"    // register Gemini factory
	_ "github.com/everstacklabs/ereuna/internal/provider/providers/openai"    // register GPT factory
	"github.com/everstacklabs/ereuna/internal/report"
	"github.com/everstacklabs/ereuna/internal/server"
	"github.com/everstacklabs/ereuna/internal/websearch"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "ereuna",
		Short: "LLM-backed research report generator",
		Long:  "Generates structured research reports section by section via Gemini, GPT, or Claude, with grounded chat over the results.",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		generateCmd(),
		chatCmd(),
		exportCmd(),
		serveCmd(),
		modelsCmd(),
		templatesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a research report and write it to the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			topic, _ := cmd.Flags().GetString("topic")
			keywords, _ := cmd.Flags().GetStringSlice("keywords")
			questions, _ := cmd.Flags().GetStringSlice("questions")
			model, _ := cmd.Flags().GetString("model")
			deep, _ := cmd.Flags().GetBool("deep-research")
			wordCount, _ := cmd.Flags().GetInt("word-count")
			templateName, _ := cmd.Flags().GetString("template")
			if model == "" {
				model = cfg.Model
			}

			prompts, err := loadPrompts(cfg)
			if err != nil {
				return err
			}

			eng := newEngine(cfg, "")
			genOpts := []report.GeneratorOption{
				report.WithDeepResearch(deep || cfg.DeepResearch),
				report.WithSummaryWordCount(cfg.SummaryWordCount),
			}
			if wordCount > 0 {
				genOpts = append(genOpts, report.WithWordCount(wordCount))
			} else if cfg.WordCount > 0 {
				genOpts = append(genOpts, report.WithWordCount(cfg.WordCount))
			}

			gen, err := report.NewGenerator(eng, prompts, model, topic, keywords, questions, genOpts...)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var rep *report.Report
			if templateName != "" {
				templates, err := report.LoadTemplates(cfg.TemplatesDir)
				if err != nil {
					return fmt.Errorf("loading templates: %w", err)
				}
				tmpl, ok := templates[templateName]
				if !ok {
					return fmt.Errorf("unknown report template %q (have: %s)",
						templateName, strings.Join(report.TemplateNames(templates), ", "))
				}
				rep = gen.GenerateFromTemplate(ctx, tmpl)
			} else {
				rep = gen.GenerateReport(ctx)
			}

			summary := gen.ExecutiveSummary(ctx, rep)
			if engine.IsErrorText(summary) {
				slog.Warn("executive summary failed", "response", summary)
				summary = ""
			}

			sourcesPath, _ := cmd.Flags().GetString("sources")
			citationStyle, _ := cmd.Flags().GetString("citation-style")
			bibliography, err := loadBibliography(sourcesPath, citationStyle)
			if err != nil {
				return err
			}

			writer := export.NewWriter(cfg.OutputDir, model)
			files, err := writer.Write(rep, topic,
				&export.MarkdownRenderer{Summary: summary, Bibliography: bibliography},
				export.TextRenderer{})
			if err != nil {
				return fmt.Errorf("exporting report: %w", err)
			}

			for _, f := range files {
				fmt.Println(f)
			}
			if failed := rep.Failed(); len(failed) > 0 {
				fmt.Printf("\n%d section(s) failed: %s\n", len(failed), strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().String("topic", "", "Research topic")
	cmd.Flags().StringSlice("keywords", nil, "Research keywords")
	cmd.Flags().StringSlice("questions", nil, "Research questions")
	cmd.Flags().String("model", "", "Model identifier (default: from config)")
	cmd.Flags().Bool("deep-research", false, "Widen section word counts and prompt for depth")
	cmd.Flags().Int("word-count", 0, "Target words per section")
	cmd.Flags().String("template", "", "Named report template instead of the canonical sections")
	cmd.Flags().String("sources", "", "YAML sources file for the bibliography")
	cmd.Flags().String("citation-style", export.StyleAPA, "Citation style: APA, MLA, or Chicago")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat over a previously generated report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			snapshotPath, _ := cmd.Flags().GetString("report")
			model, _ := cmd.Flags().GetString("model")
			noWeb, _ := cmd.Flags().GetBool("no-web")
			if model == "" {
				model = cfg.Model
			}

			topic, rep, err := export.LoadSnapshot(snapshotPath)
			if err != nil {
				return err
			}

			prompts, err := loadPrompts(cfg)
			if err != nil {
				return err
			}

			var opts []chat.Option
			if !noWeb {
				searchClient := httpclient.New(httpclient.WithRateLimit(cfg.Search.RateLimit))
				var pages *cache.PageCache
				if !cfg.NoCache {
					if pc, err := cache.New(cfg.CacheDir, cfg.PageCacheTTL()); err == nil {
						pages = pc
					} else {
						slog.Warn("page cache disabled", "error", err)
					}
				}
				opts = append(opts, chat.WithWebFallback(
					websearch.NewDuckDuckGo(searchClient),
					websearch.NewPageScraper(searchClient, pages)))
			}

			session := chat.NewSession(newEngine(cfg, chat.SystemPrompt), prompts, model, topic, opts...)
			session.LoadResearch(rep)

			fmt.Printf("Chatting about %q. Empty line to exit.\n", topic)
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				query := strings.TrimSpace(scanner.Text())
				if query == "" {
					break
				}
				fmt.Println(session.Respond(cmd.Context(), query))
			}
			return scanner.Err()
		},
	}

	cmd.Flags().String("report", "", "Path to a report YAML snapshot")
	cmd.Flags().String("model", "", "Model identifier (default: from config)")
	cmd.Flags().Bool("no-web", false, "Disable the web search fallback")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-render a report snapshot to markdown or text",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshotPath, _ := cmd.Flags().GetString("report")
			format, _ := cmd.Flags().GetString("format")
			sourcesPath, _ := cmd.Flags().GetString("sources")
			citationStyle, _ := cmd.Flags().GetString("citation-style")

			topic, rep, err := export.LoadSnapshot(snapshotPath)
			if err != nil {
				return err
			}
			bibliography, err := loadBibliography(sourcesPath, citationStyle)
			if err != nil {
				return err
			}

			var renderer export.Renderer
			switch format {
			case "markdown", "md":
				renderer = &export.MarkdownRenderer{Bibliography: bibliography}
			case "text", "txt":
				renderer = export.TextRenderer{}
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
			return renderer.Render(os.Stdout, rep, topic)
		},
	}

	cmd.Flags().String("report", "", "Path to a report YAML snapshot")
	cmd.Flags().String("format", "markdown", "Output format: markdown or text")
	cmd.Flags().String("sources", "", "YAML sources file for the bibliography")
	cmd.Flags().String("citation-style", export.StyleAPA, "Citation style: APA, MLA, or Chicago")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve report generation and chat over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			prompts, err := loadPrompts(cfg)
			if err != nil {
				return err
			}
			return server.New(server.NewBackend(cfg, prompts)).Run(cfg.Serve.Addr)
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported model identifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			models := config.Models()
			ids := make([]string, 0, len(models))
			for id := range models {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Printf("%-28s %s\n", id, models[id])
			}
			return nil
		},
	}
}

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List prompt and report templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if initDefaults, _ := cmd.Flags().GetBool("init"); initDefaults {
				dir, _ := cmd.Flags().GetString("dir")
				if dir == "" {
					dir = cfg.PromptsDir
				}
				if dir == "" {
					return fmt.Errorf("no prompts directory: set prompts_dir in config or pass --dir")
				}
				if err := prompt.SaveDefaults(dir); err != nil {
					return fmt.Errorf("writing default prompts: %w", err)
				}
				fmt.Printf("Wrote default prompt templates to %s\n", dir)
				return nil
			}

			prompts, err := loadPrompts(cfg)
			if err != nil {
				return err
			}
			fmt.Println("Prompt templates:")
			for _, name := range prompts.Names() {
				fmt.Printf("  %s\n", name)
			}

			if cfg.TemplatesDir != "" {
				templates, err := report.LoadTemplates(cfg.TemplatesDir)
				if err != nil {
					return fmt.Errorf("loading templates: %w", err)
				}
				fmt.Println("Report templates:")
				for _, name := range report.TemplateNames(templates) {
					fmt.Printf("  %s\n", name)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("init", false, "Write the default prompt templates as editable YAML files")
	cmd.Flags().String("dir", "", "Target directory for --init (default: prompts_dir from config)")
	return cmd
}

func loadBibliography(sourcesPath, style string) (string, error) {
	if sourcesPath == "" {
		return "", nil
	}
	sources, err := export.LoadSources(sourcesPath)
	if err != nil {
		return "", err
	}
	return export.Bibliography(sources, style), nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func loadPrompts(cfg *config.Config) (*prompt.Store, error) {
	prompts := prompt.NewStore()
	if cfg.PromptsDir != "" {
		if err := prompts.LoadDir(cfg.PromptsDir); err != nil {
			return nil, fmt.Errorf("loading prompts: %w", err)
		}
	}
	return prompts, nil
}

func newEngine(cfg *config.Config, systemPrompt string) *engine.Engine {
	registry := provider.NewRegistry(cfg.APIKeys(), provider.WithBaseURLs(cfg.BaseURLs()))
	opts := []engine.Option{
		engine.WithMaxRetries(cfg.MaxRetries),
		engine.WithTimeout(cfg.RequestTimeout()),
		engine.WithRecorder(metrics.ProviderRecorder{}),
	}
	if systemPrompt != "" {
		opts = append(opts, engine.WithSystemPrompt(systemPrompt))
	}
	return engine.New(registry, opts...)
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
