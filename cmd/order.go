package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"buildall/internal/builder"
	"buildall/internal/formatting"
)

func newOrderCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "order [recipes-directory]",
		Short: "Show the order recipes would be built in",
		Long: `Lists the recipes below the given directory in dependency order: every
recipe comes after the recipes of the directory it depends on. No package
index is needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, &flags, recipesArg(args))
			if err != nil {
				return err
			}
			formatter, err := newFormatter(flags.output)
			if err != nil {
				return err
			}

			recipes, err := builder.FetchAllRecipes(cfg.Recipes.Directory, cfg.Recipes.MaxDepth)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(cfg.Recipes.Directory)
			if err != nil {
				return err
			}
			order, err := formatting.NewOrder(recipes, root)
			if err != nil {
				return err
			}
			out, err := formatter.FormatOrder(order)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "Maximum directory depth searched for recipes (0 means unlimited)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", string(formatting.FormatTable), "Output format: table, console, json or yaml")
	return cmd
}
