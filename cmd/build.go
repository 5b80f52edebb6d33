package cmd

import (
	"github.com/spf13/cobra"

	"buildall/internal/builder"
	"buildall/internal/formatting"
)

func newBuildCmd() *cobra.Command {
	var (
		flags  runFlags
		dryRun bool
		noTest bool
	)
	cmd := &cobra.Command{
		Use:   "build [recipes-directory]",
		Short: "Build every recipe of a directory for its whole build matrix",
		Long: `Finds the recipes below the given directory (default: recipes.directory
from the configuration), puts them in dependency order and resolves the
distributions of each build matrix. Distributions found in an inspected
channel or directory are not rebuilt. Every distribution, built or found, is
then handed to each upload destination.

Examples:
  buildall build recipes/ --index-channel https://conda.anaconda.org/conda-forge
  buildall build recipes/ --matrix-conditions "python >=3.5" --upload-channel myorg/channels/dev
  buildall build recipes/ --inspect-directory ./conda-bld --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, &flags, recipesArg(args))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("no-test") {
				cfg.Build.NoTest = noTest
			}
			if _, err := newFormatter(flags.output); err != nil {
				return err
			}

			tool := &builder.CommandBuildTool{
				Command:   cfg.Build.Command,
				OutputDir: cfg.Build.OutputDir,
				NoTest:    cfg.Build.NoTest,
				Stdout:    cmd.OutOrStdout(),
				Stderr:    cmd.ErrOrStderr(),
			}
			b, idx, err := newBuilder(cmd.Context(), cfg, tool)
			if err != nil {
				return err
			}

			var plan *builder.Plan
			err = withSpinner(cmd, "Resolving build matrix...", func() error {
				plan, err = b.Plan(cmd.Context(), idx)
				return err
			})
			if err != nil {
				return err
			}
			if err := printPlan(cmd, flags.output, plan, b.Platform()); err != nil {
				return err
			}
			if dryRun {
				return nil
			}
			return b.Run(cmd.Context(), plan)
		},
	}
	addRunFlags(cmd, &flags, formatting.FormatConsole)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without building or uploading")
	cmd.Flags().BoolVar(&noTest, "no-test", false, "Skip the tests of the recipes")
	return cmd
}

