// Package cli implements the cyclecast command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Flags holds the global flags shared by every subcommand.
type Flags struct {
	ConfigFile string
}

// NewRootCmd builds an isolated command tree; tests construct their own.
func NewRootCmd() *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "cyclecast",
		Short: "Adaptive menstrual cycle prediction service",
		Long: `cyclecast predicts the next period, ovulation day and fertile window
from a short cycle history and recalibrates itself every time a real
period start is confirmed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "Path to a YAML configuration file")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newMigrateCmd(flags))
	cmd.AddCommand(newPredictCmd(flags))
	cmd.AddCommand(newResetPasswordCmd(flags))
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

func printError(out io.Writer, err error) {
	_, _ = color.New(color.FgRed, color.Bold).Fprintf(out, "error: %v\n", err)
}

func requireFlag(name string, value string) error {
	if value == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}
