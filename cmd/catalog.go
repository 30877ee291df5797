package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var flagCatalogForce bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the persisted ebook catalog",
}

var catalogBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build (or refresh) the catalog from the configured directories",
	RunE:  runCatalogBuild,
}

var catalogDedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate catalog entries by canonical path",
	RunE:  runCatalogDedupe,
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE:  runCatalogStats,
}

func init() {
	catalogBuildCmd.Flags().BoolVar(&flagCatalogForce, "force", false, "Rebuild even if the catalog is fresh")
	catalogCmd.AddCommand(catalogBuildCmd, catalogDedupeCmd, catalogStatsCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := newStore(cfg)

	c, err := store.Build(defaultDirs(cfg), flagCatalogForce)
	if err != nil {
		return fmt.Errorf("catalog build failed: %w", err)
	}

	printSection("Catalog")
	printOK(fmt.Sprintf("%d books cataloged in %.2fs", c.Metadata.TotalBooks, c.Metadata.BuildTimeSeconds))
	printInfo(fmt.Sprintf("catalog written to %s", store.Path()))
	return nil
}

func runCatalogDedupe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := newStore(cfg)

	before, err := store.Load()
	if err != nil {
		return err
	}
	beforeCount := len(before.Books)

	c, err := store.Deduplicate()
	if err != nil {
		return fmt.Errorf("deduplicate failed: %w", err)
	}

	printSection("Dedupe")
	removed := beforeCount - len(c.Books)
	if removed == 0 {
		printOK("no duplicates found")
	} else {
		printOK(fmt.Sprintf("%d duplicate entries removed (%d remain)", removed, len(c.Books)))
	}
	return nil
}

func runCatalogStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := newStore(cfg)

	c, err := store.Load()
	if err != nil {
		return err
	}

	printSection("Catalog stats")
	printInfo(fmt.Sprintf("last refresh: %s", c.Metadata.RefreshDate))
	printInfo(fmt.Sprintf("source directories: %d", len(c.Metadata.SourceDirectories)))

	stats := c.Stats
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Books\t%d\n", stats.TotalBooks)
	fmt.Fprintf(w, "  Total size\t%.2f MB (%.2f GB)\n", stats.TotalSizeMB, stats.TotalSizeGB)
	fmt.Fprintf(w, "  Average size\t%.2f MB\n", stats.AverageSizeMB)
	fmt.Fprintf(w, "  Directories\t%d\n", stats.UniqueDirectoryCount)
	if stats.LargestBook != nil {
		fmt.Fprintf(w, "  Largest\t%s (%.2f MB)\n", stats.LargestBook.Filename, stats.LargestBook.SizeMB)
	}
	_ = w.Flush()

	if len(stats.FileTypeCounts) > 0 {
		fmt.Println()
		exts := make([]string, 0, len(stats.FileTypeCounts))
		for ext := range stats.FileTypeCounts {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		for _, ext := range exts {
			fmt.Printf("  %s\t%d\n", ext, stats.FileTypeCounts[ext])
		}
	}
	return nil
}
