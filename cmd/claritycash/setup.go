package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aforti1/clarity-cash/internal/collector"
	"github.com/aforti1/clarity-cash/internal/config"
	"github.com/aforti1/clarity-cash/internal/logger"
	"github.com/aforti1/clarity-cash/internal/notifier"
	"github.com/aforti1/clarity-cash/internal/recorder"
	"github.com/aforti1/clarity-cash/internal/scheduler"
	"github.com/aforti1/clarity-cash/internal/strategy"
	"github.com/aforti1/clarity-cash/internal/taxonomy"

	"github.com/rs/zerolog"
)

// app bundles the wired components shared by every command.
type app struct {
	Config    *config.Config
	Log       zerolog.Logger
	Taxonomy  *taxonomy.Taxonomy
	Engine    *strategy.Engine
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Scheduler *scheduler.Scheduler
}

// setup loads config and wires the pipeline. input, when set, replaces the
// configured source with a file. Publishing is enabled only when publish is
// true and a webhook URL is configured.
func setup(input string, publish bool) (*app, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if input != "" {
		cfg.Source.Path = input
		cfg.Source.BaseURL = ""
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log := logger.NewWithOptions(os.Stderr, logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	tax, err := taxonomy.LoadOrDefault(cfg.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy %s: %w", cfg.TaxonomyPath, err)
	}
	eng, err := strategy.NewEngine(tax, cfg.Params())
	if err != nil {
		return nil, fmt.Errorf("init scoring engine: %w", err)
	}

	a := &app{Config: cfg, Log: log, Taxonomy: tax, Engine: eng}
	a.Collector = collector.NewCollector(buildSource(cfg), fallbackSource(cfg), log)

	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("Init sqlite recorder failed, using noop")
			a.Recorder = recorder.NewNoopRecorder()
		} else {
			a.Recorder = sr
		}
	} else {
		a.Recorder = recorder.NewNoopRecorder()
	}

	var pub scheduler.Publisher
	if publish && cfg.Webhook.URL != "" {
		pub = notifier.NewWebhookPublisher(cfg.Webhook.URL, cfg.Proxy, log)
	}
	a.Scheduler = scheduler.NewScheduler(a.Collector, eng, a.Recorder, pub, log, scheduler.Options{
		WindowDays: cfg.WindowDays,
		MaxRetries: cfg.Webhook.MaxRetries,
	})
	return a, nil
}

// buildSource prefers the HTTP source when a base URL is configured.
func buildSource(cfg *config.Config) collector.Source {
	if cfg.Source.BaseURL != "" {
		src := collector.NewHTTPSource(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Proxy,
			time.Duration(cfg.Source.TimeoutSeconds)*time.Second)
		src.LookbackDays = cfg.Scoring.Savings.LookbackDays
		return src
	}
	if cfg.Source.Path != "" {
		return collector.NewFileSource(cfg.Source.Path)
	}
	return nil
}

// fallbackSource is the file export when both a URL and a path are set.
func fallbackSource(cfg *config.Config) collector.Source {
	if cfg.Source.BaseURL != "" && cfg.Source.Path != "" {
		return collector.NewFileSource(cfg.Source.Path)
	}
	return nil
}

func (a *app) requireSource() error {
	if err := a.Config.ValidateSource(); err != nil {
		return fmt.Errorf("no transaction source: %w", err)
	}
	return nil
}

func (a *app) Close() {
	if err := a.Recorder.Close(); err != nil {
		a.Log.Warn().Err(err).Msg("Close recorder failed")
	}
}
