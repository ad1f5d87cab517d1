package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/claude-log-viewer/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	projectDir string
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "claude-log-viewer",
	Short: "Watch Claude Code logs and serve browsable HTML reports",
	Long: `A local developer tool that regenerates HTML transcript reports from
Claude Code log files and serves them with a session selector UI.

It watches the project directory (default ~/.claude/projects) for
changed source logs, re-runs the external report generator with
debounced triggers, and serves the freshest generated content over
HTTP on loopback.

Quick Start:
  claude-log-viewer serve                # watch, regenerate, and serve
  claude-log-viewer generate             # one-shot regenerate and serve
  claude-log-viewer sessions             # list sessions in the terminal

For detailed usage, see: https://github.com/iksnae/claude-log-viewer`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", "", "Project directory to watch (default ~/.claude/projects)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/claude-log-viewer/config.yaml)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves the effective configuration from the config file,
// environment, and persistent flags.
func loadConfig() (internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if projectDir != "" {
		cfg.ProjectDir = projectDir
	}
	return cfg, nil
}
