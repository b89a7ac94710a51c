package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/syssam/autogen/compiler"
	"github.com/syssam/autogen/compiler/watch"
	"github.com/syssam/autogen/internal/logging/logfields"
)

func registerWatchCmd(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever sources or definitions change",
		Long: `Run a generation pass, then watch the project and run another pass after
every burst of changes to Go sources or error definitions. Stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd.Context())
		},
	}
	cmd.Flags().String(keyOnly, "", "run a single pipeline (props, errors)")
	cmd.Flags().Duration(keyDebounce, watch.DefaultDebounce, "quiet period before a pass")
	parent.AddCommand(cmd)
}

func (a *app) runWatch(ctx context.Context) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	if err := compiler.Prepare(cfg); err != nil {
		return err
	}

	pass := func(ctx context.Context) {
		report, err := compiler.Generate(ctx, cfg, compiler.WithLogger(a.log))
		if err != nil {
			if ctx.Err() == nil {
				a.log.WithError(err).Error("Generation pass failed")
			}
			return
		}
		printReport(a.stdout, a.stderr, report)
	}
	pass(ctx)

	w, err := watch.New(watch.Options{
		Root:      cfg.ProjectDir,
		Extension: cfg.Extension,
		Debounce:  a.vp.GetDuration(keyDebounce),
		Skip:      []string{cfg.Abs(cfg.ResourcesDir), cfg.Abs(cfg.ErrorsPackage)},
	}, a.log)
	if err != nil {
		return err
	}
	defer w.Close()
	a.log.WithField(logfields.File, cfg.ProjectDir).Info("Watching for changes")
	return w.Run(ctx, pass)
}
