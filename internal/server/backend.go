package server

import (
	"context"
	"log/slog"

	"github.com/everstacklabs/ereuna/internal/cache"
	"github.com/everstacklabs/ereuna/internal/chat"
	"github.com/everstacklabs/ereuna/internal/config"
	"github.com/everstacklabs/ereuna/internal/engine"
	"github.com/everstacklabs/ereuna/internal/httpclient"
	"github.com/everstacklabs/ereuna/internal/metrics"
	"github.com/everstacklabs/ereuna/internal/prompt"
	"github.com/everstacklabs/ereuna/internal/provider"
	"github.com/everstacklabs/ereuna/internal/report"
	"github.com/everstacklabs/ereuna/internal/websearch"
)

// NewBackend builds the production SessionFactory. Each workspace gets
// its own provider registry and chat session; the prompt store and page
// cache are shared.
func NewBackend(cfg *config.Config, prompts *prompt.Store) SessionFactory {
	recorder := metrics.ProviderRecorder{}

	var pages *cache.PageCache
	if !cfg.NoCache {
		var err error
		pages, err = cache.New(cfg.CacheDir, cfg.PageCacheTTL())
		if err != nil {
			slog.Warn("page cache disabled", "error", err)
		}
	}
	searchClient := httpclient.New(httpclient.WithRateLimit(cfg.Search.RateLimit))
	searcher := websearch.NewDuckDuckGo(searchClient)
	scraper := websearch.NewPageScraper(searchClient, pages)

	return func(req GenerateRequest) (*Workspace, error) {
		model := req.Model
		if model == "" {
			model = cfg.Model
		}

		registry := provider.NewRegistry(cfg.APIKeys(), provider.WithBaseURLs(cfg.BaseURLs()))

		eng := engine.New(registry,
			engine.WithMaxRetries(cfg.MaxRetries),
			engine.WithTimeout(cfg.RequestTimeout()),
			engine.WithRecorder(recorder))

		genOpts := []report.GeneratorOption{
			report.WithDeepResearch(req.DeepResearch || cfg.DeepResearch),
			report.WithSummaryWordCount(cfg.SummaryWordCount),
		}
		if req.WordCount > 0 {
			genOpts = append(genOpts, report.WithWordCount(req.WordCount))
		} else if cfg.WordCount > 0 {
			genOpts = append(genOpts, report.WithWordCount(cfg.WordCount))
		}

		gen, err := report.NewGenerator(eng, prompts, model, req.Topic, req.Keywords, req.Questions, genOpts...)
		if err != nil {
			return nil, err
		}

		chatEng := engine.New(registry,
			engine.WithMaxRetries(cfg.MaxRetries),
			engine.WithTimeout(cfg.RequestTimeout()),
			engine.WithSystemPrompt(chat.SystemPrompt),
			engine.WithRecorder(recorder))
		chatSession := chat.NewSession(chatEng, prompts, model, req.Topic,
			chat.WithWebFallback(searcher, scraper))

		generate := func(ctx context.Context) *report.Report {
			var rep *report.Report
			if len(req.Sections) > 0 {
				rep = gen.GenerateFromTemplate(ctx, &report.ReportTemplate{
					Name:     "custom",
					Sections: req.Sections,
				})
			} else {
				rep = gen.GenerateReport(ctx)
			}
			chatSession.LoadResearch(rep)
			return rep
		}

		return &Workspace{Generate: generate, Chat: chatSession}, nil
	}
}
