package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/iksnae/claude-log-viewer/internal"
	"github.com/iksnae/claude-log-viewer/internal/web"
	"github.com/spf13/cobra"
)

var (
	servePort     int
	serveInterval time.Duration
	serveDebounce time.Duration
	serveTimeout  time.Duration
	serveCommand  []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch logs, regenerate reports, and serve the selector UI",
	Long: `Run the enhanced mode: an initial regeneration starts in the
background, the project directory is watched for source log changes
(debounced, coalesced), and the HTTP server serves the session selector
UI plus the generated content. The server always serves the last
successfully generated content; a failed regeneration never removes
previously valid output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyServeFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		history, err := internal.OpenHistory(cfg.HistoryPath)
		if err != nil {
			internal.LogWarn("Run history disabled: %v", err)
			history = nil
		} else {
			defer history.Close()
		}

		invoker := internal.NewCommandInvoker(cfg.GeneratorCommand, time.Duration(cfg.GeneratorTimeout))
		cache := internal.NewIndexCache(cfg.CachePath)
		coord := internal.NewCoordinator(cfg.ProjectDir, invoker, history, cache)

		// Serve the cached index immediately while the first
		// regeneration runs in the background.
		if cached, ok := cache.Load(internal.NewestSourceModTime(cfg.ProjectDir)); ok {
			internal.LogInfo("Loaded %d session(s) from index cache", len(cached))
			coord.SetIndex(cached)
		}

		scanner := internal.NewScanner(cfg.ProjectDir)
		// Prime the watch state so the initial tree isn't reported as
		// one giant change burst.
		if _, err := scanner.Scan(); err != nil {
			internal.LogWarn("Initial scan failed: %v", err)
		}
		watcher := internal.NewWatcher(scanner,
			time.Duration(cfg.PollInterval),
			time.Duration(cfg.DebounceWindow),
			func() { coord.Trigger(ctx, internal.TriggerFileChange) },
		)

		coord.Trigger(ctx, internal.TriggerStartup)
		go watcher.Run(ctx)

		server := web.New(ctx, cfg.Addr(), cfg.ProjectDir, coord, history)
		serverErr := make(chan error, 1)
		go func() { serverErr <- server.Start() }()

		select {
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			internal.LogWarn("Shutdown incomplete: %v", err)
		}
		coord.Wait()
		return nil
	},
}

// applyServeFlags overlays explicitly set flags onto the config.
func applyServeFlags(cmd *cobra.Command, cfg *internal.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("interval") {
		cfg.PollInterval = internal.Duration(serveInterval)
	}
	if cmd.Flags().Changed("debounce") {
		cfg.DebounceWindow = internal.Duration(serveDebounce)
	}
	if cmd.Flags().Changed("timeout") {
		cfg.GeneratorTimeout = internal.Duration(serveTimeout)
	}
	if cmd.Flags().Changed("generator") {
		cfg.GeneratorCommand = serveCommand
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "HTTP port (loopback only)")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 2*time.Second, "Poll interval for the change detector")
	serveCmd.Flags().DurationVar(&serveDebounce, "debounce", 750*time.Millisecond, "Quiet window before a change burst triggers regeneration")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 120*time.Second, "Generator subprocess timeout")
	serveCmd.Flags().StringSliceVar(&serveCommand, "generator", nil, "Generator command and arguments")
}
