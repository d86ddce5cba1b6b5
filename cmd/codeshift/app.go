package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/codeshift"
	"github.com/ZaguanLabs/codeshift/cache"
	"github.com/ZaguanLabs/codeshift/config"
	"github.com/ZaguanLabs/codeshift/i18n"
	"github.com/ZaguanLabs/codeshift/provider"
	"github.com/ZaguanLabs/codeshift/rules"
	"github.com/ZaguanLabs/codeshift/store"
)

var (
	cyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.Bold, color.FgYellow).SprintFunc()
)

// app carries global flags and the resolved configuration.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	statePath  string
	logLevel   string
	noColor    bool

	cfg    *config.Config
	logger *logrus.Logger
}

// deps is everything a command needs to talk to the engine.
type deps struct {
	engine *codeshift.Engine
	models codeshift.ModelLister
	store  codeshift.StateStore
	close  func()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   codeshift.Name,
		Short: "Convert source code between programming languages",
		Long: `codeshift converts source code into two other languages at once.

Rewrite rules produce a fast first translation. While confidence in the
rules is low, a locally hosted model (Ollama) is asked as well; when the two
disagree the model wins and the result is learned as a pattern, so similar
input later skips the model entirely.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: ./"+config.FileName+")")
	pf.StringVar(&a.statePath, "state", "", "state file holding learned patterns and statistics")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newConvertCmd(a),
		newServeCmd(a),
		newStatsCmd(a),
		newResetCmd(a),
		newModelsCmd(a),
		newPatternsCmd(a),
		newVersionCmd(a),
	)
	return root
}

// load resolves configuration: file and environment, then global flags.
func (a *app) load() error {
	if a.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.statePath != "" {
		cfg.Store.Backend = config.BackendFile
		cfg.Store.Path = a.statePath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := cfg.Log.NewLogger(a.stderr)
	if err != nil {
		return err
	}

	i18n.Init(cfg.Locale)
	a.cfg = cfg
	a.logger = logger
	return nil
}

// newModel builds the configured model backend.
func (a *app) newModel() (codeshift.ModelTranslator, codeshift.ModelLister) {
	m := a.cfg.Model

	var backend interface {
		codeshift.ModelTranslator
		codeshift.ModelLister
	}
	switch m.Backend {
	case config.BackendOpenAI:
		backend = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  m.APIKey,
			Model:   m.Name,
			BaseURL: m.BaseURL,
			Timeout: m.Timeout,
		})
	default:
		backend = provider.NewOllamaProvider(provider.OllamaConfig{
			BaseURL: m.BaseURL,
			Model:   m.Name,
			Timeout: m.Timeout,
		})
	}

	if m.RequestsPerMinute > 0 {
		limited := codeshift.NewRateLimitedModel(backend, codeshift.RateLimitConfig{
			RequestsPerMinute: m.RequestsPerMinute,
			BurstSize:         m.Burst,
			Timeout:           m.Timeout,
		})
		return limited, limited
	}
	return backend, backend
}

// newStore builds the configured state store. Redis and file stores retry
// transient failures.
func (a *app) newStore() (codeshift.StateStore, func(), error) {
	s := a.cfg.Store
	switch s.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.BackendRedis:
		rs, err := store.NewRedisStore(store.RedisConfig{URL: s.RedisURL, Key: s.Key})
		if err != nil {
			return nil, nil, err
		}
		return codeshift.NewRetryableStore(rs, codeshift.DefaultRetryConfig()), func() { _ = rs.Close() }, nil
	default:
		fs := store.NewFileStore(s.Path)
		return codeshift.NewRetryableStore(fs, codeshift.DefaultRetryConfig()), func() {}, nil
	}
}

// newCache builds the configured pattern cache.
func (a *app) newCache() (codeshift.PatternCache, func(), error) {
	c := a.cfg.Cache
	if c.Backend != config.BackendRedis {
		return cache.NewInMemoryCache(), func() {}, nil
	}
	rc, err := cache.NewRedisCache(cache.RedisConfig{URL: c.RedisURL, KeyPrefix: c.KeyPrefix, Logger: a.logger})
	if err != nil {
		return nil, nil, &codeshift.CacheError{Message: "connecting to redis", Cause: err}
	}
	return rc, func() { _ = rc.Close() }, nil
}

// open builds the engine from configuration and restores persisted state.
func (a *app) open(ctx context.Context) (*deps, error) {
	model, lister := a.newModel()

	st, closeStore, err := a.newStore()
	if err != nil {
		return nil, err
	}
	pc, closeCache, err := a.newCache()
	if err != nil {
		closeStore()
		return nil, err
	}

	e := a.cfg.Engine
	engine := codeshift.NewEngine(rules.NewTranslator(), model,
		codeshift.WithCache(pc),
		codeshift.WithStore(st),
		codeshift.WithSettings(a.cfg.Settings()),
		codeshift.WithConfidenceThreshold(e.ConfidenceThreshold),
		codeshift.WithSimilarityThreshold(e.SimilarityThreshold),
		codeshift.WithKeyNormalization(codeshift.KeyNormalization(e.KeyNormalization)),
		codeshift.WithLogger(a.logger),
	)
	if err := engine.Restore(ctx); err != nil {
		closeCache()
		closeStore()
		return nil, fmt.Errorf("restoring state: %w", err)
	}

	return &deps{
		engine: engine,
		models: lister,
		store:  st,
		close: func() {
			closeCache()
			closeStore()
		},
	}, nil
}
