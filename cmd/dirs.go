package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfwise/shelfwise/internal/scanner"
)

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "Show the directories that would be scanned",
	RunE:  runDirs,
}

func init() {
	rootCmd.AddCommand(dirsCmd)
}

func runDirs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printSection("Directories")
	defaults := make(map[string]struct{})
	for _, d := range scanner.DefaultDirectories() {
		defaults[d] = struct{}{}
		printOK(d)
	}
	for _, d := range cfg.Directories {
		if _, ok := defaults[d]; ok {
			continue
		}
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			printOK(d + " (from config)")
		} else {
			printMiss(d + " (from config, missing)")
		}
	}
	return nil
}
