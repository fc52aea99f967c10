package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/contentcompass/compass/pkg/audit"
	"github.com/contentcompass/compass/pkg/config"
	"github.com/contentcompass/compass/pkg/fixture"
	"github.com/contentcompass/compass/pkg/models"
	"github.com/contentcompass/compass/pkg/planner"
	"github.com/contentcompass/compass/pkg/session"
	"github.com/contentcompass/compass/pkg/store"
	"github.com/contentcompass/compass/pkg/virlo"
)

var version = "dev"

const defaultConfigPath = "compass.yaml"

// Global flags, registered on the root command.
var (
	cfgPath     string
	flagLive    bool
	flagDemo    bool
	verbose     bool
	flagDisable []string
)

func main() {
	root := &cobra.Command{
		Use:     "compass",
		Short:   "Compass — trend research and content planning for short-form creators",
		Version: version,
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfigPath, "path to config file")
	root.PersistentFlags().BoolVar(&flagLive, "live", false, "fetch from the live API (charges credits)")
	root.PersistentFlags().BoolVar(&flagDemo, "demo", false, "serve bundled demo data at zero cost")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringSliceVar(&flagDisable, "disable", nil, "resource kinds to disable for this run (trends,hashtags,videos,niches)")

	root.AddCommand(
		newTrendsCmd(),
		newHashtagsCmd(),
		newVideosCmd(),
		newNichesCmd(),
		newPullCmd(),
		newCreditsCmd(),
		newCacheCmd(),
		newPlanCmd(),
		newBriefCmd(),
		newActivityCmd(),
		newStatusCmd(),
		newResetCmd(),
		newMCPCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles everything a command needs: the restored session, the
// activity recorder, the plan generator and the fixtures behind them.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	sess     *session.Session
	rec      *audit.Recorder
	gen      *planner.Generator
	fixtures *fixture.Source
}

// openApp builds the app from the configured state directory and resolves
// the session mode. The returned cleanup closes every resource and must be
// deferred by the caller.
func openApp() (*app, func(), error) {
	if flagLive && flagDemo {
		return nil, nil, errors.New("--live and --demo are mutually exclusive")
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.New(filepath.Join(dataDir, "compass.db"))
	if err != nil {
		return nil, nil, err
	}

	rec, err := audit.New(filepath.Join(dataDir, "activity.db"))
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	fx := fixture.New()
	client := virlo.New(cfg.Virlo.BaseURL, cfg.Virlo.Timeout, logger)
	sess, err := session.New(client, fx, st, rec, logger)
	if err != nil {
		_ = rec.Close()
		_ = st.Close()
		return nil, nil, err
	}
	for _, kind := range models.AllKinds() {
		sess.SetEnabled(kind, cfg.EndpointEnabled(kind))
	}
	for _, name := range flagDisable {
		kind := models.ResourceKind(strings.ToLower(strings.TrimSpace(name)))
		if !kind.Valid() {
			_ = rec.Close()
			_ = st.Close()
			return nil, nil, fmt.Errorf("--disable: unknown resource kind %q", name)
		}
		sess.SetEnabled(kind, false)
	}

	// Flags beat config. Sessions start in demo mode, so only live needs
	// an explicit switch, and that switch fails on a bad credential.
	mode := cfg.Mode
	if flagLive {
		mode = models.ModeLive
	}
	if flagDemo {
		mode = models.ModeDemo
	}
	if mode == models.ModeLive {
		key := cfg.Virlo.APIKey
		if key == "" {
			key = os.Getenv("VIRLO_API_KEY")
		}
		if err := sess.SetMode(models.ModeLive, key); err != nil {
			_ = rec.Close()
			_ = st.Close()
			return nil, nil, err
		}
	}

	gen := planner.New(nil, logger)
	var gem *planner.Gemini
	geminiKey := cfg.Gemini.APIKey
	if geminiKey == "" {
		geminiKey = os.Getenv("GEMINI_API_KEY")
	}
	if geminiKey != "" {
		gem, err = planner.NewGemini(context.Background(), geminiKey, cfg.Gemini.Model)
		if err != nil {
			logger.Warn("gemini unavailable, plans use fallback content", zap.Error(err))
		} else {
			gen = planner.New(gem, logger)
		}
	}

	cleanup := func() {
		if gem != nil {
			_ = gem.Close()
		}
		_ = rec.Close()
		_ = st.Close()
		_ = logger.Sync()
	}

	return &app{
		cfg:      cfg,
		log:      logger,
		sess:     sess,
		rec:      rec,
		gen:      gen,
		fixtures: fx,
	}, cleanup, nil
}

// loadConfig reads the config at path. A missing file at the default path
// falls back to defaults; an explicit path must exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if path == defaultConfigPath && os.IsNotExist(err) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config.Load(path)
}

// newLogger builds the CLI logger. Stdout carries tables and the MCP
// protocol, so logs always go to stderr.
func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
