package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"buildall/internal/builder"
	"buildall/internal/config"
	"buildall/internal/dependency"
	"buildall/internal/matrix"
	"buildall/internal/spec"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates an unreadable or invalid configuration.
	ExitCodeConfig = 2
	// ExitCodeDependency indicates recipes that cannot be put in build order.
	ExitCodeDependency = 3
	// ExitCodeBuild indicates a failed build.
	ExitCodeBuild = 4
	// ExitCodeDestination indicates a destination refused a distribution.
	ExitCodeDestination = 5
	// ExitCodeRecipe indicates requirements that cannot be parsed or expanded
	// into a build matrix.
	ExitCodeRecipe = 6
)

// versionTemplate renders --version the same way as the version command.
const versionTemplate = `{{printf "buildall version %s\n" .Version}}`

// Flags shared by every command.
var (
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string
	quiet      bool
	noColor    bool
)

// rootCmd represents the base command for the buildall application.
var rootCmd = &cobra.Command{
	Use:   "buildall",
	Short: "Build a directory of conda recipes across their version matrix",
	Long: `buildall finds every conda recipe in a directory, puts the recipes in
dependency order and works out which python, numpy, perl and R versions each
must be built for. Distributions already available in the inspected channels
or directories are skipped; the rest are built and handed to the configured
upload destinations.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. Interrupts cancel
// the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var validationErrs config.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ExitCodeConfig
	}

	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitCodeConfig
	}

	var cyclic *dependency.CyclicDependencyError
	if errors.As(err, &cyclic) {
		return ExitCodeDependency
	}

	var unknown *dependency.UnknownDependencyError
	if errors.As(err, &unknown) {
		return ExitCodeDependency
	}

	var orderingFailed *dependency.OrderingFailedError
	if errors.As(err, &orderingFailed) {
		return ExitCodeDependency
	}

	var buildErr *builder.BuildError
	if errors.As(err, &buildErr) {
		return ExitCodeBuild
	}

	var destErr *builder.DestinationError
	if errors.As(err, &destErr) {
		return ExitCodeDestination
	}

	var malformed *spec.MalformedSpecError
	if errors.As(err, &malformed) {
		return ExitCodeRecipe
	}

	var unsupported *matrix.UnsupportedDimensionError
	if errors.As(err, &unsupported) {
		return ExitCodeRecipe
	}

	// Default to general error
	return ExitCodeError
}

func init() {
	rootCmd.SetVersionTemplate(versionTemplate)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: ./"+config.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Environment files to load (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output and logs below warnings")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newMatrixCmd())
	rootCmd.AddCommand(newOrderCmd())
}
