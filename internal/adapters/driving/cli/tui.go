package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/buddy/internal/adapters/driving/tui"
	"github.com/custodia-labs/buddy/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive retrieval tester",
	Long: `Launch an interactive terminal UI for testing retrieval.

Type a question and press Enter to see the ranked passages with their page
and distance. Prefix a question with /k=N to change the result count.

Controls:
  Enter     - Query / expand passage
  ↑/k, ↓/j  - Navigate passages
  n, /      - New query
  Esc       - Back
  ?         - Help
  quit, q   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runProgram runs a bubbletea model. Tests replace it.
var runProgram = func(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	s, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	retriever, cleanup, err := openRetriever(ctx, s)
	if err != nil {
		return err
	}
	defer cleanup()

	app, err := tui.NewApp(tui.NewPorts(retriever))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	// Log lines would tear the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(cmd.ErrOrStderr())

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
