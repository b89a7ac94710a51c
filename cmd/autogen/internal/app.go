// Package internal contains the main application logic for the CLI.
package internal

import (
	"context"
	"io"

	"github.com/syssam/autogen/internal/commands"
)

// Run is the main application logic, extracted for testability.
// It accepts OS dependencies as parameters.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd := commands.NewRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
