package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the shelfwise version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shelfwise %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
