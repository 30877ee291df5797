package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/shelfwise/shelfwise/internal/logger"
)

var flagWatchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the catalog whenever the watched directories change",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagWatchDebounce, "debounce", 2*time.Second, "Quiet period before rebuilding after a change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dirs := defaultDirs(cfg)
	if len(dirs) == 0 {
		printMiss("no directories to watch")
		return nil
	}

	store := newStore(cfg)
	if _, err := store.Build(dirs, false); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := 0
	for _, root := range dirs {
		// fsnotify is not recursive; register every subdirectory.
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if err := watcher.Add(path); err == nil {
				watched++
			}
			return nil
		})
	}
	printSection("Watch")
	printOK(fmt.Sprintf("%s tracks %d directories", filepath.Clean(cfg.CatalogPath), watched))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var timer *time.Timer
	rebuild := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logger.Get().Debug().Str("op", ev.Op.String()).Str("path", ev.Name).Msg("filesystem change")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(flagWatchDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Get().Warn().Err(err).Msg("watch error")
		case <-rebuild:
			if _, err := store.Build(dirs, true); err != nil {
				logger.Get().Error().Err(err).Msg("rebuild after change failed")
			}
		}
	}
}
