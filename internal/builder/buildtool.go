package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"buildall/internal/distribution"
	"buildall/internal/matrix"
	"buildall/pkg/logging"
)

// BuildTool builds one distribution and returns the path of the built file.
type BuildTool interface {
	Build(ctx context.Context, dist *distribution.Distribution) (string, error)
}

// CommandBuildTool runs an external build command, conda build by default,
// once per distribution.
type CommandBuildTool struct {
	// Command is the program and its leading arguments.
	Command   []string
	OutputDir string
	NoTest    bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// Args returns the arguments appended to Command for dist.
func (t *CommandBuildTool) Args(dist *distribution.Distribution) []string {
	args := []string{dist.Recipe.Dir, "--output-folder", t.OutputDir}
	if v, ok := dist.Case.Version(matrix.Python); ok {
		args = append(args, "--python", v)
	}
	if v, ok := dist.Case.Version(matrix.Numpy); ok {
		args = append(args, "--numpy", v)
	}
	if t.NoTest {
		args = append(args, "--no-test")
	}
	return args
}

// Build runs the command and locates the built file in the output folder,
// either under the platform subdirectory or directly inside it.
func (t *CommandBuildTool) Build(ctx context.Context, dist *distribution.Distribution) (string, error) {
	if len(t.Command) == 0 {
		return "", fmt.Errorf("no build command configured")
	}
	outputDir, err := filepath.Abs(t.OutputDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}

	tool := *t
	tool.OutputDir = outputDir
	args := append(append([]string(nil), t.Command[1:]...), tool.Args(dist)...)
	cmd := exec.CommandContext(ctx, t.Command[0], args...)
	cmd.Env = append(os.Environ(), distribution.ContextFor(dist.Case, dist.Platform).Environ()...)
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr

	logging.Info("Builder", "Building %s", dist)
	logging.Debug("Builder", "Running %s %v", t.Command[0], args)
	if err := cmd.Run(); err != nil {
		return "", &BuildError{Dist: dist.Dist(), Err: err}
	}

	candidates := []string{
		filepath.Join(outputDir, dist.Platform.Subdir(), dist.PkgFilename()),
		filepath.Join(outputDir, dist.PkgFilename()),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &BuildError{Dist: dist.Dist(), Err: fmt.Errorf("build did not produce %s", candidates[0])}
}
