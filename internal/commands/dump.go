package commands

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/syssam/autogen/compiler"
	"github.com/syssam/autogen/compiler/diag"
	"github.com/syssam/autogen/compiler/gen"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func registerDumpCmd(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:       "dump [props|errors]",
		Short:     "Print the models the generators would receive",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(gen.PipelineProperties), string(gen.PipelineErrors)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.vp.Set(keyOnly, args[0])
			}
			return a.runDump(cmd)
		},
	}
	parent.AddCommand(cmd)
}

func (a *app) runDump(cmd *cobra.Command) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	var bag diag.Bag
	models, err := compiler.Load(cmd.Context(), cfg, &bag, compiler.WithLogger(a.log))
	if err != nil {
		return err
	}
	printDiagnostics(a.stderr, bag.List())
	if cfg.PipelineEnabled(gen.PipelineProperties) {
		fmt.Fprintln(a.stdout, "# type groups")
		dumpConfig.Fdump(a.stdout, models.Groups)
	}
	if cfg.PipelineEnabled(gen.PipelineErrors) {
		fmt.Fprintln(a.stdout, "# error tables")
		dumpConfig.Fdump(a.stdout, models.Tables)
	}
	return nil
}
