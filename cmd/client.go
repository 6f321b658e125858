package cmd

import (
	"net/http"

	"github.com/brogergvhs/xkcd/internal/config"
	"github.com/brogergvhs/xkcd/internal/explain"
	"github.com/brogergvhs/xkcd/internal/ui"
	"github.com/brogergvhs/xkcd/internal/util"
	"github.com/brogergvhs/xkcd/internal/xkcd"
)

type services struct {
	cfg      *config.Config
	usedPath string
	log      *ui.Logger
	client   *http.Client
	resolver *xkcd.Resolver
	scraper  *explain.Scraper
}

// globalOptions carries the persistent flags; commands add their own on top.
func globalOptions() config.Options {
	return config.Options{
		IgnoreConfig:     flagIgnoreConfig,
		Debug:            flagDebug,
		BaseURL:          flagBaseURL,
		ExplainURL:       flagExplainURL,
		Timeout:          flagTimeout,
		UserAgent:        flagUserAgent,
		CloudflareBypass: flagCloudflareBypass,
	}
}

func newServices(opts config.Options) (*services, error) {
	cfg, used, err := config.LoadMerged(opts)
	if err != nil {
		return nil, err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	logSvc.Debugf("config: %s\n", used)

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          cfg.TimeoutDuration(),
		UserAgent:        util.PickUserAgent(cfg.UserAgent, Version),
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      logSvc,
	})
	if err != nil {
		return nil, err
	}

	fetcher := xkcd.NewHTTPFetcher(client)
	resolver := xkcd.NewResolver(fetcher,
		xkcd.WithSite(cfg.BaseURL),
		xkcd.WithDebugLogger(logSvc),
	)

	return &services{
		cfg:      cfg,
		usedPath: used,
		log:      logSvc,
		client:   client,
		resolver: resolver,
		scraper: explain.NewScraper(fetcher,
			explain.WithBaseURL(cfg.ExplainURL),
			explain.WithSite(resolver.Site()),
			explain.WithDebugLogger(logSvc),
		),
	}, nil
}
