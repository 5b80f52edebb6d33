package index

import (
	"fmt"
	"os"
	"path/filepath"

	"buildall/pkg/logging"
)

// ScanDirectory returns a record for every package archive directly inside
// dir. The channel of each record is the directory itself. A missing
// directory yields no records.
func ScanDirectory(dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("Index", "Inspection directory %s does not exist", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		r, err := ParseFilename(entry.Name())
		if err != nil {
			continue
		}
		r.Channel = dir
		r.Subdir = filepath.Base(dir)
		records = append(records, r)
	}
	return records, nil
}
