package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/autogen/compiler"
	"github.com/syssam/autogen/compiler/diag"
)

func registerGenerateCmd(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation pass",
		Long: `Run one generation pass over the project. Inputs whose outputs are up to
date are skipped; outputs that are no longer produced are removed.`,
		Example: `  # Generate everything
  autogen generate

  # Only the error tables, without the cache
  autogen generate --only errors --no-cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd)
		},
	}
	cmd.Flags().String(keyOnly, "", "run a single pipeline (props, errors)")
	parent.AddCommand(cmd)
}

func (a *app) runGenerate(cmd *cobra.Command) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	report, err := compiler.Generate(cmd.Context(), cfg, compiler.WithLogger(a.log))
	if err != nil {
		return err
	}
	printReport(a.stdout, a.stderr, report)
	if report.HasErrors() {
		return ErrDiagnostics
	}
	return nil
}

// printReport writes the diagnostics to stderr and a summary to stdout.
func printReport(stdout, stderr io.Writer, report *compiler.Report) {
	printDiagnostics(stderr, report.Diagnostics)
	fmt.Fprintf(stdout, "autogen: %d written, %d unchanged, %d removed, %d cached (%s)\n",
		len(report.Written), len(report.Unchanged), len(report.Removed), report.Skipped,
		report.Duration.Round(time.Millisecond))
}

func printDiagnostics(w io.Writer, ds []diag.Diagnostic) {
	for _, d := range ds {
		fmt.Fprintln(w, d.String())
	}
}
