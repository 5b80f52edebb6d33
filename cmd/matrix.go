package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"buildall/internal/builder"
	"buildall/internal/formatting"
	"buildall/internal/index"
	"buildall/internal/watch"
	"buildall/pkg/logging"
)

func newMatrixCmd() *cobra.Command {
	var (
		flags     runFlags
		watchMode bool
		debounce  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "matrix [recipes-directory]",
		Short: "Show the distributions a build would produce",
		Long: `Resolves the build matrix of every recipe without building anything and
shows, in build order, each distribution and whether it would be built or
where it was found.

With --watch the recipe directory is watched and the matrix is shown again
whenever a recipe changes.

Examples:
  buildall matrix recipes/ --index-file repodata.json
  buildall matrix recipes/ --subdir osx-64 --output json
  buildall matrix recipes/ --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, &flags, recipesArg(args))
			if err != nil {
				return err
			}
			if _, err := newFormatter(flags.output); err != nil {
				return err
			}
			b, idx, err := newBuilder(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}

			if err := showMatrix(cmd, b, idx, flags.output); err != nil {
				return err
			}
			if !watchMode {
				return nil
			}
			return watchMatrix(cmd, b, idx, cfg.Recipes.Directory, flags.output, debounce)
		},
	}
	addRunFlags(cmd, &flags, formatting.FormatTable)
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Show the matrix again whenever a recipe changes")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period after a change before the matrix is recomputed")
	return cmd
}

func showMatrix(cmd *cobra.Command, b *builder.Builder, idx *index.Index, output string) error {
	var plan *builder.Plan
	err := withSpinner(cmd, "Resolving build matrix...", func() error {
		var err error
		plan, err = b.Plan(cmd.Context(), idx)
		return err
	})
	if err != nil {
		return err
	}
	return printPlan(cmd, output, plan, b.Platform())
}

// watchMatrix recomputes the matrix on every recipe change until the command
// is interrupted. Resolution errors are logged and do not stop watching.
func watchMatrix(cmd *cobra.Command, b *builder.Builder, idx *index.Index, root, output string, debounce time.Duration) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	changes := make(chan watch.Change, 1)
	watcher := watch.NewRecipeWatcher(root, debounce)
	if err := watcher.Start(ctx, changes); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-changes:
			logging.Info("Matrix", "%d recipe files changed, recomputing", len(change.Paths))
			if err := showMatrix(cmd, b, idx, output); err != nil {
				logging.Error("Matrix", err, "Failed to resolve the build matrix")
			}
		}
	}
}
