package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfwise/shelfwise/internal/catalog"
	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/logger"
	"github.com/shelfwise/shelfwise/internal/scanner"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:          "shelfwise",
	Short:        "Shelfwise: ebook catalog, search, and Kindle delivery",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Shelfwise indexes ebook files on local and mounted storage into a
persisted catalog at ~/.shelfwise/catalog.json, serves fuzzy and keyword
search over it, and can email a book to your Kindle address.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := flagLogLevel
		if level == "" {
			if cfg, err := config.Load(); err == nil {
				level = cfg.LogLevel
			}
		}
		return logger.Init(level, "")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig wraps config.Load with a friendlier error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	return cfg, nil
}

// defaultDirs returns the resolver defaults merged with any extra roots
// from the configuration, duplicates removed.
func defaultDirs(cfg *config.Config) []string {
	dirs := scanner.DefaultDirectories()
	seen := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		seen[d] = struct{}{}
	}
	for _, d := range cfg.Directories {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}
	return dirs
}

// newStore wires a catalog store from the configuration.
func newStore(cfg *config.Config) *catalog.Store {
	return newStoreWithDirs(cfg, func() []string { return defaultDirs(cfg) })
}

// newStoreWithDirs wires a catalog store whose rebuilds read roots from
// dirs, so a serving layer can point it at its directory set.
func newStoreWithDirs(cfg *config.Config, dirs func() []string) *catalog.Store {
	sc := scanner.New(cfg.ScanFormats, cfg.ScanWorkers)
	return catalog.NewStore(catalog.StoreOptions{
		Path:        cfg.CatalogPath,
		MaxAge:      time.Duration(cfg.CatalogMaxAgeDays) * 24 * time.Hour,
		RefreshHour: cfg.RefreshHour,
		Scan:        sc.Scan,
		DefaultDirs: dirs,
	})
}
