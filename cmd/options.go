package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"buildall/internal/builder"
	"buildall/internal/config"
	"buildall/internal/destination"
	"buildall/internal/formatting"
	"buildall/internal/index"
	"buildall/internal/recipe"
	"buildall/pkg/logging"
)

// runFlags are the flags shared by the commands that resolve a recipe
// directory. Values only override the configuration file when the flag was
// given on the command line.
type runFlags struct {
	maxDepth           int
	inspectChannels    []string
	inspectDirectories []string
	uploadChannels     []string
	conditions         []string
	maxMajor           int
	maxMinor           int
	indexFiles         []string
	indexChannels      []string
	subdir             string
	output             string
}

func addRunFlags(cmd *cobra.Command, f *runFlags, defaultOutput formatting.OutputFormat) {
	flags := cmd.Flags()
	flags.IntVar(&f.maxDepth, "max-depth", 0, "Maximum directory depth searched for recipes (0 means unlimited)")
	flags.StringSliceVar(&f.inspectChannels, "inspect-channel", nil, "Channel searched for distributions that are already built (repeatable)")
	flags.StringSliceVar(&f.inspectDirectories, "inspect-directory", nil, "Directory searched for distributions that are already built (repeatable)")
	flags.StringSliceVar(&f.uploadChannels, "upload-channel", nil, "Destination for distributions: owner, owner/channels/name, file:///path or s3://bucket/prefix (repeatable)")
	flags.StringSliceVar(&f.conditions, "matrix-conditions", nil, "Match specs the build matrix must satisfy, e.g. \"python >=3.5\" (repeatable)")
	flags.IntVar(&f.maxMajor, "matrix-max-n-major-versions", config.DefaultMaxVersions, "Number of major versions kept per matrix dimension (0 keeps all)")
	flags.IntVar(&f.maxMinor, "matrix-max-n-minor-versions", config.DefaultMaxVersions, "Number of minor versions kept per major version (0 keeps all)")
	flags.StringSliceVar(&f.indexFiles, "index-file", nil, "Repodata file (JSON or YAML) added to the package index (repeatable)")
	flags.StringSliceVar(&f.indexChannels, "index-channel", nil, "Channel whose repodata is added to the package index (repeatable)")
	flags.StringVar(&f.subdir, "subdir", "", "Conda platform to resolve for, e.g. linux-64 (default: the host platform)")
	flags.StringVarP(&f.output, "output", "o", string(defaultOutput), "Output format: table, console, json or yaml")
}

// loadRunConfig assembles the configuration: defaults, the configuration
// file, the environment, then command line flags. recipesDir, when given,
// replaces recipes.directory.
func loadRunConfig(cmd *cobra.Command, f *runFlags, recipesDir string) (config.Config, error) {
	if err := config.LoadEnv(envFiles...); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, err
	}
	config.ApplyEnv(&cfg, nil)

	if recipesDir != "" {
		cfg.Recipes.Directory = recipesDir
	}
	changed := cmd.Flags().Changed
	if changed("max-depth") {
		cfg.Recipes.MaxDepth = f.maxDepth
	}
	if changed("inspect-channel") {
		cfg.Inspect.Channels = f.inspectChannels
	}
	if changed("inspect-directory") {
		cfg.Inspect.Directories = f.inspectDirectories
	}
	if changed("upload-channel") {
		cfg.Upload.Destinations = f.uploadChannels
	}
	if changed("matrix-conditions") {
		cfg.Matrix.Conditions = f.conditions
	}
	if changed("matrix-max-n-major-versions") {
		cfg.Matrix.MaxMajorVersions = f.maxMajor
	}
	if changed("matrix-max-n-minor-versions") {
		cfg.Matrix.MaxMinorVersions = f.maxMinor
	}
	if changed("index-file") {
		cfg.Index.Files = f.indexFiles
	}
	if changed("index-channel") {
		cfg.Index.Channels = f.indexChannels
	}
	if changed("subdir") {
		cfg.Index.Subdir = f.subdir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	initLogging(cfg.Logging)
	return cfg, nil
}

// initLogging sends logs to stderr so that stdout only carries command output.
func initLogging(cfg config.LoggingConfig) {
	level, _ := logging.ParseLevel(cfg.Level)
	if quiet && level < logging.LevelWarn {
		level = logging.LevelWarn
	}
	logging.InitForCLIWithFormat(level, cfg.Format, os.Stderr)
}

func platformFor(cfg config.Config) (recipe.Platform, error) {
	if cfg.Index.Subdir == "" {
		return recipe.HostPlatform(), nil
	}
	return recipe.ParsePlatform(cfg.Index.Subdir)
}

func newDestinations(cfg config.Config, runID string) ([]destination.Destination, error) {
	settings := destination.Settings{
		HostingURL: cfg.Upload.HostingURL,
		Token:      cfg.Upload.Token,
		S3:         cfg.Upload.S3,
		RunID:      runID,
	}
	dests := make([]destination.Destination, 0, len(cfg.Upload.Destinations))
	for _, raw := range cfg.Upload.Destinations {
		dest, err := destination.FromURL(raw, settings)
		if err != nil {
			return nil, fmt.Errorf("invalid upload destination %q: %w", raw, err)
		}
		dests = append(dests, dest)
	}
	return dests, nil
}

// newBuilder wires a Builder and its package index from the configuration.
// tool may be nil for commands that never build.
func newBuilder(ctx context.Context, cfg config.Config, tool builder.BuildTool) (*builder.Builder, *index.Index, error) {
	platform, err := platformFor(cfg)
	if err != nil {
		return nil, nil, err
	}
	runID := uuid.NewString()
	dests, err := newDestinations(cfg, runID)
	if err != nil {
		return nil, nil, err
	}

	fetcher := index.NewFetcher(index.WithRetryMax(cfg.Index.RetryMax))
	idx, err := builder.LoadIndex(ctx, fetcher, cfg.Index.Files, cfg.Index.Channels, platform.Subdir())
	if err != nil {
		return nil, nil, err
	}

	b := builder.New(builder.Options{
		RecipesDir:         cfg.Recipes.Directory,
		MaxDepth:           cfg.Recipes.MaxDepth,
		InspectChannels:    cfg.Inspect.Channels,
		InspectDirectories: cfg.Inspect.Directories,
		Destinations:       dests,
		Conditions:         cfg.Matrix.Conditions,
		MaxMajorVersions:   cfg.Matrix.MaxMajorVersions,
		MaxMinorVersions:   cfg.Matrix.MaxMinorVersions,
		Platform:           platform,
		BuildTool:          tool,
		Indexer:            fetcher,
		RunID:              runID,
	})
	return b, idx, nil
}

// withSpinner runs fn behind a progress spinner on stderr unless quiet mode
// is enabled.
func withSpinner(cmd *cobra.Command, message string, fn func() error) error {
	if quiet {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()
	return fn()
}

func newFormatter(output string) (formatting.Formatter, error) {
	format, err := formatting.ParseOutputFormat(output)
	if err != nil {
		return nil, err
	}
	return formatting.NewFactory().CreateFormatter(formatting.Options{
		Format: format,
		Quiet:  quiet,
		Color:  !noColor,
	}), nil
}

// printPlan renders a plan with the --output formatter.
func printPlan(cmd *cobra.Command, output string, plan *builder.Plan, platform recipe.Platform) error {
	formatter, err := newFormatter(output)
	if err != nil {
		return err
	}
	out, err := formatter.FormatPlan(formatting.NewPlanView(plan, platform))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func recipesArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
