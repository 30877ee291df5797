package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfwise/shelfwise/internal/scanner"
)

var flagScanAll bool

var scanCmd = &cobra.Command{
	Use:   "scan [directory ...]",
	Short: "Scan directories for ebook files without touching the catalog",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&flagScanAll, "all", false, "Print every file instead of a summary")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = defaultDirs(cfg)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no directories to scan; pass one or add entries to the config")
	}

	sc := scanner.New(cfg.ScanFormats, cfg.ScanWorkers)
	records := sc.Scan(dirs)

	printSection("Scan")
	printInfo(fmt.Sprintf("%d directories scanned", len(dirs)))
	printOK(fmt.Sprintf("%d ebook files found", len(records)))

	if flagScanAll {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, r := range records {
			fmt.Fprintf(w, "  %s\t%.2f MB\t%s\n", r.Filename, r.SizeMB, r.Directory)
		}
		_ = w.Flush()
	}
	return nil
}
