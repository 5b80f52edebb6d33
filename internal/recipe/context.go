package recipe

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Platform is the operating system and architecture a recipe is rendered for.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// HostPlatform returns the platform buildall is running on, in conda terms.
func HostPlatform() Platform {
	p := Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
	switch p.OS {
	case "darwin":
		p.OS = "osx"
	case "windows":
		p.OS = "win"
	}
	switch p.Arch {
	case "amd64":
		p.Arch = "x86_64"
	case "arm64":
		if p.OS != "osx" {
			p.Arch = "aarch64"
		}
	case "386":
		p.Arch = "x86"
	}
	return p
}

// ParsePlatform parses a conda subdir such as "linux-64" or "osx-arm64".
func ParsePlatform(subdir string) (Platform, error) {
	osName, arch, ok := strings.Cut(subdir, "-")
	if !ok || osName == "" || arch == "" {
		return Platform{}, fmt.Errorf("invalid platform %q, expected <os>-<arch>", subdir)
	}
	switch osName {
	case "linux", "osx", "win":
	default:
		return Platform{}, fmt.Errorf("invalid platform %q: unknown operating system %q", subdir, osName)
	}
	switch arch {
	case "64":
		arch = "x86_64"
	case "32":
		arch = "x86"
	case "arm64":
		if osName == "linux" {
			arch = "aarch64"
		}
	}
	return Platform{OS: osName, Arch: arch}, nil
}

// Subdir returns the conda subdirectory name: linux-64, osx-arm64, win-32...
func (p Platform) Subdir() string {
	switch p.Arch {
	case "x86_64":
		return p.OS + "-64"
	case "x86":
		return p.OS + "-32"
	}
	return p.OS + "-" + p.Arch
}

// Context pins the versions used while rendering a recipe. Empty versions
// leave the corresponding dimension unset: its numeric selector variable is 0
// and its template variable is empty.
type Context struct {
	Python   string
	Numpy    string
	Perl     string
	R        string
	Platform Platform
}

// condaDigits turns "2.7" into "27" and "1.10" into "110".
func condaDigits(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "")
}

func condaInt(version string) int {
	n, err := strconv.Atoi(condaDigits(version))
	if err != nil {
		return 0
	}
	return n
}

// TemplateData returns the variables available to the meta.yaml template.
func (c Context) TemplateData() map[string]string {
	return map[string]string{
		"PY_VER":    c.Python,
		"NPY_VER":   c.Numpy,
		"PERL_VER":  c.Perl,
		"R_VER":     c.R,
		"CONDA_PY":  condaDigits(c.Python),
		"CONDA_NPY": condaDigits(c.Numpy),
		"SUBDIR":    c.Platform.Subdir(),
	}
}

// Environ returns the CONDA_* variables a build of this context runs with.
// Unset dimensions are left out.
func (c Context) Environ() []string {
	var env []string
	if c.Python != "" {
		env = append(env, "CONDA_PY="+condaDigits(c.Python))
	}
	if c.Numpy != "" {
		env = append(env, "CONDA_NPY="+condaDigits(c.Numpy))
	}
	if c.Perl != "" {
		env = append(env, "CONDA_PERL="+c.Perl)
	}
	if c.R != "" {
		env = append(env, "CONDA_R="+c.R)
	}
	return env
}

// pythonSelectors lists the pyXY names understood in selectors.
var pythonSelectors = []string{
	"26", "27", "33", "34", "35", "36", "37", "38", "39", "310", "311", "312", "313",
}

// SelectorVariables returns the variables available to "# [expr]" selectors.
func (c Context) SelectorVariables() map[string]cty.Value {
	py := condaInt(c.Python)
	major := 0
	if c.Python != "" {
		major, _ = strconv.Atoi(strings.SplitN(c.Python, ".", 2)[0])
	}
	osName := c.Platform.OS
	vars := map[string]cty.Value{
		"py":      cty.NumberIntVal(int64(py)),
		"py3k":    cty.BoolVal(major == 3),
		"py2k":    cty.BoolVal(major == 2),
		"np":      cty.NumberIntVal(int64(condaInt(c.Numpy))),
		"pl":      cty.NumberIntVal(int64(condaInt(c.Perl))),
		"r":       cty.NumberIntVal(int64(condaInt(c.R))),
		"linux":   cty.BoolVal(osName == "linux"),
		"osx":     cty.BoolVal(osName == "osx"),
		"win":     cty.BoolVal(osName == "win"),
		"unix":    cty.BoolVal(osName == "linux" || osName == "osx"),
		"x86":     cty.BoolVal(c.Platform.Arch == "x86"),
		"x86_64":  cty.BoolVal(c.Platform.Arch == "x86_64"),
		"aarch64": cty.BoolVal(c.Platform.Arch == "aarch64"),
		"arm64":   cty.BoolVal(c.Platform.Arch == "arm64"),
		"linux64": cty.BoolVal(osName == "linux" && c.Platform.Arch == "x86_64"),
		"win32":   cty.BoolVal(osName == "win" && c.Platform.Arch == "x86"),
		"win64":   cty.BoolVal(osName == "win" && c.Platform.Arch == "x86_64"),
	}
	for _, digits := range pythonSelectors {
		vars["py"+digits] = cty.BoolVal(condaDigits(c.Python) == digits)
	}
	return vars
}
