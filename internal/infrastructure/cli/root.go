// Package cli implements the atelier command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/atelier/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/atelier/pkg/application"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "atelier",
	Version: Version,
	Short:   "Scheduling and crew payroll for studio productions",
	Long: `Atelier keeps a studio's production schedule, crew assignments, and
payroll ledger in one workspace. Items are scheduled onto the calendar,
assigned to crew, and completed; completion drives payroll generation
for compensated crew members.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// consoleNotifier prints service notifications to the terminal.
type consoleNotifier struct{}

func (consoleNotifier) Notify(n application.Notification) {
	switch n.Level {
	case application.LevelWarning:
		fmt.Fprintln(os.Stderr, warningStyle.Render("warning:"), n.Message)
	case application.LevelError:
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), n.Message)
	default:
		fmt.Println(infoStyle.Render(n.Message))
	}
}

// loadServicesForCurrentDir wires the service graph for the workspace in the
// current directory. Callers must Close the returned services.
func loadServicesForCurrentDir() (*wiring.AppServices, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return wiring.BuildAppServices(cwd, consoleNotifier{})
}
