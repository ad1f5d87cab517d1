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
	generatePort    int
	generateNoServe bool
	generateTimeout time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate reports once and serve them (no watching)",
	Long: `Run the simple mode: invoke the report generator once,
synchronously, then serve the generated content without watching for
changes. With --no-serve the command exits after generating.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = generatePort
		}
		if cmd.Flags().Changed("timeout") {
			cfg.GeneratorTimeout = internal.Duration(generateTimeout)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		invoker := internal.NewCommandInvoker(cfg.GeneratorCommand, time.Duration(cfg.GeneratorTimeout))
		internal.LogInfo("Regenerating reports...")
		if err := invoker.Invoke(ctx, cfg.ProjectDir); err != nil {
			return err
		}

		index, err := internal.BuildIndex(cfg.ProjectDir)
		if err != nil {
			return err
		}
		fmt.Printf("Generated reports for %d session(s) in %s\n", len(index), cfg.ProjectDir)

		if generateNoServe {
			return nil
		}

		coord := internal.NewCoordinator(cfg.ProjectDir, invoker, nil, nil)
		coord.SetIndex(index)

		server := web.New(ctx, cfg.Addr(), cfg.ProjectDir, coord, nil)
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

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&generatePort, "port", "p", 8080, "HTTP port (loopback only)")
	generateCmd.Flags().BoolVar(&generateNoServe, "no-serve", false, "Exit after generating instead of serving")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 120*time.Second, "Generator subprocess timeout")
}
