// Command slimport imports, inspects and exports study-leave rosters from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suphotsudsee/study-leave-web/internal/config"
	"github.com/suphotsudsee/study-leave-web/internal/importer"
	"github.com/suphotsudsee/study-leave-web/internal/store"
)

type globalOptions struct {
	configPath string
	dataDir    string
	driver     string
	dsn        string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalOptions

	root := &cobra.Command{
		Use:           "slimport",
		Short:         "Study-leave roster tooling",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config.toml path (default: next to the executable)")
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "data directory (overrides the config file)")
	root.PersistentFlags().StringVar(&g.driver, "driver", "", "database driver: sqlite3 or postgres")
	root.PersistentFlags().StringVar(&g.dsn, "dsn", "", "database DSN (overrides the config file)")

	root.AddCommand(
		newInspectCmd(&g),
		newImportCmd(&g),
		newExportCmd(&g),
		newTemplateCmd(),
		newBackfillCmd(&g),
	)
	return root
}

func (g *globalOptions) load() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if g.configPath != "" {
		config.LoadDotEnv(".")
		cfg, _, err = config.LoadFile(g.configPath)
	} else {
		cfg, _, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if g.dataDir != "" {
		cfg.Data.DataDir = g.dataDir
	}
	if g.driver != "" {
		cfg.Database.Driver = g.driver
	}
	if g.dsn != "" {
		cfg.Database.DSN = g.dsn
	}
	return cfg, nil
}

func (g *globalOptions) openStore() (*store.Store, *config.AppConfig, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, nil, err
	}
	if _, err := config.EnsureDataDir(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	driver, dsn := config.DatabaseTarget(cfg)
	st, err := store.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

func importerOptions(cfg *config.AppConfig) importer.Options {
	return importer.Options{
		HeaderScanRows:       cfg.Import.HeaderScanRows,
		DataStartScanRows:    cfg.Import.DataStartScanRows,
		MaxSkippedRows:       cfg.Import.MaxSkippedRows,
		MaxDuplicateExamples: cfg.Import.MaxDuplicateExamples,
	}
}
