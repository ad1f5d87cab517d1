package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/claude-log-viewer/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	projectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List available sessions",
	Long:  `List all sessions found in the project directory, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Reuse the index cache when it matches the current tree,
		// otherwise build from disk.
		var index []internal.Session
		cache := internal.NewIndexCache(cfg.CachePath)
		if cached, ok := cache.Load(internal.NewestSourceModTime(cfg.ProjectDir)); ok {
			internal.LogDebug("Loaded session list from index cache")
			index = cached
		} else {
			index, err = internal.BuildIndex(cfg.ProjectDir)
			if err != nil {
				return fmt.Errorf("failed to build session index: %w", err)
			}
		}

		if len(index) == 0 {
			fmt.Println("No sessions found in", cfg.ProjectDir)
			return nil
		}

		displaySessions(index)
		return nil
	},
}

// displaySessions renders the session table.
func displaySessions(sessions []internal.Session) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Sessions (%d)", len(sessions))))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, s := range sessions {
		title := s.DisplayName
		if len(title) > 48 {
			title = title[:45] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			titleStyle.Render(title),
			idStyle.Render(shortSessionID(s.ID)),
			projectStyle.Render(s.Project),
			countStyle.Render(fmt.Sprintf("%d msgs", s.MessageCount)),
			dateStyle.Render(s.LastModified.Local().Format(time.DateTime)),
		)
	}
	w.Flush()
}

func shortSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
