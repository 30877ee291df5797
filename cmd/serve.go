package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shelfwise/shelfwise/internal/dirset"
	"github.com/shelfwise/shelfwise/internal/server"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := flagServeAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	dirs := dirset.New(func() []string { return defaultDirs(cfg) })
	store := newStoreWithDirs(cfg, dirs.Valid)
	sender := newSender(cfg)

	srv := server.New(server.Config{
		Addr:       addr,
		SearchMode: cfg.SearchMode,
		Threshold:  cfg.SimilarityThreshold,
	}, store, dirs, sender)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}
