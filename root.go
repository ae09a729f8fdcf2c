package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/modwarden/modwarden/internal/catalog"
	"github.com/modwarden/modwarden/internal/channel"
	"github.com/modwarden/modwarden/internal/config"
	"github.com/modwarden/modwarden/internal/engine"
	"github.com/modwarden/modwarden/internal/instance"
	"github.com/modwarden/modwarden/internal/logging"
	"github.com/modwarden/modwarden/internal/manifest"
)

var (
	flagDir         string
	flagLoader      string
	flagGameVersion string
	flagChannel     string
	flagCatalogURL  string
	flagConcurrency int
	flagYes         bool
	flagVerbose     bool
	flagQuiet       bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "modwarden",
	Short: "Keep a mods directory identified and up to date",
	Long: `modwarden resolves the catalog identity of every mod archive in an
instance directory, detects newer compatible versions on your stability
channel, and applies updates without ever corrupting local files.

Settings resolve in order: flags, then the instance manifest
(modwarden.json), then MODWARDEN_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		level := cfg.LogLevel
		if flagVerbose {
			level = "debug"
		}
		if flagQuiet {
			level = "error"
		}
		return logging.Init(logging.Config{Level: level, Format: cfg.LogFormat})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDir, "dir", "d", ".", "instance mods directory")
	pf.StringVar(&flagLoader, "loader", "", "mod loader (fabric, forge, quilt, neoforge, vanilla)")
	pf.StringVar(&flagGameVersion, "game-version", "", "game version the instance runs")
	pf.StringVar(&flagChannel, "channel", "", "stability channel (release, beta, alpha)")
	pf.StringVar(&flagCatalogURL, "catalog-url", "", "catalog API base URL")
	pf.IntVar(&flagConcurrency, "concurrency", 0, "max concurrent catalog lookups")
	pf.BoolVarP(&flagYes, "yes", "y", false, "assume yes; never prompt")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "errors only")
}

// newEngine opens the instance named by the flags and wires an engine to
// it. The loader has no default: guessing it wrong would resolve every mod
// against the wrong artifact lists.
func newEngine() (*engine.Engine, error) {
	man, err := manifest.Load(flagDir)
	if err != nil {
		logging.L().Warn("unreadable manifest, ignoring recorded settings", zap.Error(err))
		man = &manifest.File{}
	}

	loaderName := flagLoader
	if loaderName == "" {
		loaderName = man.Loader
	}
	if loaderName == "" {
		return nil, fmt.Errorf("loader not set: pass --loader or record it in %s", manifest.Name)
	}
	ld, err := instance.ParseLoader(loaderName)
	if err != nil {
		return nil, err
	}

	gameVersion := flagGameVersion
	if gameVersion == "" {
		gameVersion = man.GameVersion
	}
	if gameVersion == "" && ld.CatalogEnabled() {
		return nil, fmt.Errorf("game version not set: pass --game-version or record it in %s", manifest.Name)
	}

	chName := flagChannel
	if chName == "" {
		chName = man.Channel
	}
	if chName == "" {
		chName = cfg.Channel
	}
	ch, err := channel.Parse(chName)
	if err != nil {
		return nil, err
	}

	inst, err := instance.Open(flagDir, ld, gameVersion)
	if err != nil {
		return nil, err
	}

	catalogURL := flagCatalogURL
	if catalogURL == "" {
		catalogURL = cfg.CatalogURL
	}
	concurrency := flagConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}

	client := catalog.NewClient(catalog.Config{
		BaseURL:    catalogURL,
		UserAgent:  "modwarden/" + buildVersion,
		VersionTTL: 5 * time.Minute,
	})

	return engine.New(engine.Config{
		Instance:    inst,
		Catalog:     client,
		Channel:     ch,
		Concurrency: concurrency,
		Logger:      logging.L(),
	}), nil
}
