package distribution

import (
	"fmt"
	"strconv"
	"strings"

	"buildall/internal/index"
	"buildall/internal/matrix"
	"buildall/internal/recipe"
	"buildall/internal/spec"
)

// buildIDPrefixes lists the dimensions that appear in a build id, in order.
var buildIDPrefixes = []struct {
	dimension string
	prefix    string
}{
	{matrix.Numpy, "np"},
	{matrix.Python, "py"},
	{matrix.Perl, "pl"},
	{matrix.R, "r"},
}

// Distribution is a recipe rendered and pinned for one case.
type Distribution struct {
	Recipe   *recipe.Recipe
	Case     matrix.Case
	Platform recipe.Platform
	Meta     *recipe.Metadata
}

// ContextFor returns the rendering context for a case.
func ContextFor(c matrix.Case, platform recipe.Platform) recipe.Context {
	ctx := recipe.Context{Platform: platform}
	ctx.Python, _ = c.Version(matrix.Python)
	ctx.Numpy, _ = c.Version(matrix.Numpy)
	ctx.Perl, _ = c.Version(matrix.Perl)
	ctx.R, _ = c.Version(matrix.R)
	return ctx
}

// Resolve renders r for c and pins its requirements.
func Resolve(r *recipe.Recipe, c matrix.Case, platform recipe.Platform) (*Distribution, error) {
	meta, err := r.Render(ContextFor(c, platform))
	if err != nil {
		return nil, err
	}
	pinned := *meta
	if pinned.Requirements.Build, err = pinRequirements(meta.Requirements.Build, c, false); err != nil {
		return nil, fmt.Errorf("%s: %w", r.Path, err)
	}
	if pinned.Requirements.Run, err = pinRequirements(meta.Requirements.Run, c, true); err != nil {
		return nil, fmt.Errorf("%s: %w", r.Path, err)
	}
	return &Distribution{Recipe: r, Case: c, Platform: platform, Meta: &pinned}, nil
}

// pinRequirements replaces "x.x" with "<minor>*" for dimensions of the case.
// An "x.x" for a dimension the case does not pin is dropped. With pinPython,
// a bare "python" becomes "python <minor>*".
func pinRequirements(reqs []string, c matrix.Case, pinPython bool) ([]string, error) {
	out := make([]string, 0, len(reqs))
	for _, raw := range reqs {
		ms, err := spec.ParseMatchSpec(raw)
		if err != nil {
			return nil, err
		}
		version, inCase := c.Version(ms.Name)
		switch {
		case ms.Pin && inCase:
			ms = spec.MatchSpec{Name: ms.Name, Version: version + "*", Build: ms.Build}
		case ms.Pin:
			ms.Pin = false
		case pinPython && inCase && ms.Name == matrix.Python && !ms.IsConstrained():
			ms.Version = version + "*"
		}
		out = append(out, ms.String())
	}
	return out, nil
}

// Name returns the package name.
func (d *Distribution) Name() string {
	return d.Meta.Package.Name
}

// Version returns the package version.
func (d *Distribution) Version() string {
	return d.Meta.Package.Version
}

// BuildNumber returns build/number.
func (d *Distribution) BuildNumber() int {
	return d.Meta.Build.Number
}

// BuildID returns the explicit build/string when the recipe sets one.
// Otherwise it is the prefixes of the case dimensions pinned in the run
// requirements followed by "_<number>", for example "np18py27_0", or just the
// build number when nothing is pinned.
func (d *Distribution) BuildID() string {
	if d.Meta.Build.String != "" {
		return d.Meta.Build.String
	}
	var prefix strings.Builder
	for _, p := range buildIDPrefixes {
		version, ok := d.Case.Version(p.dimension)
		if !ok || !d.pinnedAtRunTime(p.dimension, version) {
			continue
		}
		prefix.WriteString(p.prefix)
		prefix.WriteString(strings.ReplaceAll(version, ".", ""))
	}
	if prefix.Len() == 0 {
		return strconv.Itoa(d.BuildNumber())
	}
	return fmt.Sprintf("%s_%d", prefix.String(), d.BuildNumber())
}

func (d *Distribution) pinnedAtRunTime(name, version string) bool {
	for _, raw := range d.Meta.Requirements.Run {
		ms, err := spec.ParseMatchSpec(raw)
		if err != nil || ms.Name != name {
			continue
		}
		if ms.Version == version+"*" {
			return true
		}
	}
	return false
}

// Dist returns "name-version-buildid".
func (d *Distribution) Dist() string {
	return d.Meta.Dist(d.BuildID())
}

// PkgFilename returns the artefact filename.
func (d *Distribution) PkgFilename() string {
	return d.Dist() + index.ArchiveExtensions[0]
}

// Skip reports whether the recipe asked not to be built for this case.
func (d *Distribution) Skip() bool {
	return d.Meta.Build.Skip
}

// IndexRecord describes the distribution as an index entry.
func (d *Distribution) IndexRecord(subdir string) index.Record {
	return index.Record{
		Filename:    d.PkgFilename(),
		Name:        d.Name(),
		Version:     d.Version(),
		Build:       d.BuildID(),
		BuildNumber: d.BuildNumber(),
		Depends:     append([]string(nil), d.Meta.Requirements.Run...),
		Subdir:      subdir,
	}
}

func (d *Distribution) String() string {
	return d.Dist()
}

// Requirements reads what the expander needs from a recipe rendered without
// any version case.
func Requirements(r *recipe.Recipe, platform recipe.Platform) (matrix.Requirements, error) {
	meta, err := r.Render(recipe.Context{Platform: platform})
	if err != nil {
		return matrix.Requirements{}, err
	}
	return matrix.Requirements{
		Name:    meta.Package.Name,
		Version: meta.Package.Version,
		Build:   meta.Requirements.Build,
		Run:     meta.Requirements.Run,
	}, nil
}

// ResolveAll expands the cases of r against idx, keeps those satisfying the
// conditions and resolves each of them in sorted case order. Skipped
// distributions are left out.
func ResolveAll(r *recipe.Recipe, idx matrix.PackageIndex, conditions []string, platform recipe.Platform) ([]*Distribution, error) {
	req, err := Requirements(r, platform)
	if err != nil {
		return nil, err
	}
	set, err := matrix.Expand(req, idx)
	if err != nil {
		return nil, err
	}
	cases, err := matrix.FilterCases(set.Sorted(), conditions)
	if err != nil {
		return nil, err
	}

	var dists []*Distribution
	for _, c := range cases {
		d, err := Resolve(r, c, platform)
		if err != nil {
			return nil, err
		}
		if d.Skip() {
			continue
		}
		dists = append(dists, d)
	}
	return dists, nil
}
