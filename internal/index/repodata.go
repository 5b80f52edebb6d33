package index

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"sigs.k8s.io/yaml"
)

// Repodata is the on-disk and on-the-wire layout of a channel subdirectory.
type Repodata struct {
	Info     RepodataInfo      `json:"info"`
	Packages map[string]Record `json:"packages"`
}

// RepodataInfo carries channel level metadata.
type RepodataInfo struct {
	Subdir string `json:"subdir,omitempty"`
}

// ParseRepodata decodes JSON or YAML repodata. Records take their filename
// from the package key and their subdir from the info section when they do
// not carry one.
func ParseRepodata(data []byte, channel string) ([]Record, error) {
	var rd Repodata
	if err := yaml.Unmarshal(data, &rd); err != nil {
		return nil, fmt.Errorf("failed to decode repodata: %w", err)
	}
	filenames := make([]string, 0, len(rd.Packages))
	for fn := range rd.Packages {
		filenames = append(filenames, fn)
	}
	sort.Strings(filenames)

	records := make([]Record, 0, len(filenames))
	for _, fn := range filenames {
		r := rd.Packages[fn]
		r.Filename = fn
		if r.Subdir == "" {
			r.Subdir = rd.Info.Subdir
		}
		if r.Channel == "" {
			r.Channel = channel
		}
		if r.Name == "" || r.Version == "" {
			return nil, fmt.Errorf("repodata entry %q has no name or version", fn)
		}
		records = append(records, r)
	}
	return records, nil
}

// LoadFile reads a repodata file (JSON or YAML) into records. The channel of
// each record defaults to the file path.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file %s: %w", path, err)
	}
	records, err := ParseRepodata(data, path)
	if err != nil {
		return nil, fmt.Errorf("index file %s: %w", path, err)
	}
	return records, nil
}

// MarshalRepodata renders records as repodata JSON for the given subdir.
func MarshalRepodata(subdir string, records []Record) ([]byte, error) {
	rd := Repodata{Info: RepodataInfo{Subdir: subdir}, Packages: make(map[string]Record, len(records))}
	for _, r := range records {
		key := r.Key()
		r.Filename = ""
		rd.Packages[key] = r
	}
	return json.MarshalIndent(rd, "", "  ")
}
