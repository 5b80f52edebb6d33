package index

import (
	"fmt"
	"strconv"
	"strings"

	"buildall/internal/spec"
)

// ArchiveExtensions lists the artefact file suffixes recognised by
// ParseFilename, in match order.
var ArchiveExtensions = []string{".tar.bz2", ".conda"}

// Record is one candidate distribution in an index.
type Record struct {
	Filename    string   `json:"fn,omitempty"`
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Build       string   `json:"build"`
	BuildNumber int      `json:"build_number"`
	Depends     []string `json:"depends,omitempty"`
	Channel     string   `json:"channel,omitempty"`
	Subdir      string   `json:"subdir,omitempty"`
}

// Dist returns the "name-version-build" distribution name.
func (r Record) Dist() string {
	return fmt.Sprintf("%s-%s-%s", r.Name, r.Version, r.Build)
}

// Key returns the filename the record is stored under, deriving one from the
// distribution name when Filename is empty.
func (r Record) Key() string {
	if r.Filename != "" {
		return r.Filename
	}
	return r.Dist() + ArchiveExtensions[0]
}

// Matches reports whether the record satisfies ms.
func (r Record) Matches(ms spec.MatchSpec) bool {
	return ms.Match(r.Name, r.Version, r.Build)
}

// Dependency returns the parsed dependency spec for name, if the record
// declares one.
func (r Record) Dependency(name string) (spec.MatchSpec, bool) {
	for _, raw := range r.Depends {
		ms, err := spec.ParseMatchSpec(raw)
		if err != nil {
			continue
		}
		if ms.Name == name {
			return ms, true
		}
	}
	return spec.MatchSpec{}, false
}

// ParseFilename builds a record from an artefact filename of the form
// "name-version-build.tar.bz2". The name itself may contain dashes.
func ParseFilename(filename string) (Record, error) {
	base := filename
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	stem := ""
	for _, ext := range ArchiveExtensions {
		if strings.HasSuffix(base, ext) {
			stem = strings.TrimSuffix(base, ext)
			break
		}
	}
	if stem == "" {
		return Record{}, fmt.Errorf("%q is not a package archive", filename)
	}

	parts := strings.Split(stem, "-")
	if len(parts) < 3 {
		return Record{}, fmt.Errorf("%q is not of the form name-version-build", filename)
	}
	n := len(parts)
	name := strings.Join(parts[:n-2], "-")
	version, build := parts[n-2], parts[n-1]
	if name == "" || version == "" || build == "" {
		return Record{}, fmt.Errorf("%q is not of the form name-version-build", filename)
	}
	return Record{
		Filename:    base,
		Name:        name,
		Version:     version,
		Build:       build,
		BuildNumber: BuildNumber(build),
	}, nil
}

// BuildNumber extracts the trailing number from a build string: "py27_3" is 3,
// "0" is 0. Build strings without a number report 0.
func BuildNumber(build string) int {
	tail := build
	if i := strings.LastIndex(build, "_"); i >= 0 {
		tail = build[i+1:]
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0
	}
	return n
}
