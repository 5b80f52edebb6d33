package destination

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	shutil "github.com/termie/go-shutil"

	"buildall/internal/distribution"
	"buildall/pkg/logging"
)

// DirectoryDestination copies freshly built distributions into a directory.
type DirectoryDestination struct {
	Directory string
}

// NewDirectoryDestination creates dir if needed. A leading "~" is expanded.
func NewDirectoryDestination(dir string) (*DirectoryDestination, error) {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", dir, err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("destination %s is not a directory", abs)
	}
	return &DirectoryDestination{Directory: abs}, nil
}

// MakeAvailable copies location into the directory when it was just built.
func (d *DirectoryDestination) MakeAvailable(_ context.Context, dist *distribution.Distribution, location string, justBuilt bool) error {
	if !justBuilt {
		return nil
	}
	copied, err := shutil.Copy(location, d.Directory, true)
	if err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", dist, d.Directory, err)
	}
	logging.Info("Destination", "Copied %s to %s", dist, copied)
	return nil
}

func (d *DirectoryDestination) String() string {
	return "directory " + d.Directory
}
