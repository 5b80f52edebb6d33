package spec

import (
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// CompareVersions orders two version strings, returning -1, 0 or 1.
func CompareVersions(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return compareComponents(components(a), components(b))
}

// MinorVersion truncates a dotted version to its first two components:
// "1.8.2" becomes "1.8". Versions with fewer components are returned as is.
func MinorVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) <= 2 {
		return version
	}
	return strings.Join(parts[:2], ".")
}

// MajorMinor returns the integer major and minor components of a version.
// ok is false when the major component is not an integer; hasMinor is false
// when there is no integer minor component.
func MajorMinor(version string) (major, minor int, ok, hasMinor bool) {
	parts := strings.Split(version, ".")
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false, false
	}
	if len(parts) < 2 {
		return major, 0, true, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return major, 0, true, false
	}
	return major, minor, true, true
}

func components(version string) []string {
	return strings.FieldsFunc(version, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
}

func compareComponents(a, b []string) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		// Missing components count as zero, so "1.8" == "1.8.0".
		ca, cb := "0", "0"
		if i < len(a) {
			ca = a[i]
		}
		if i < len(b) {
			cb = b[i]
		}
		if c := compareComponent(ca, cb); c != 0 {
			return c
		}
	}
	return 0
}

func compareComponent(a, b string) int {
	ia, errA := strconv.Atoi(a)
	ib, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		switch {
		case ia < ib:
			return -1
		case ia > ib:
			return 1
		}
		return 0
	case errA == nil:
		// Numbers sort after strings ("1.0a" < "1.0.0").
		return 1
	case errB == nil:
		return -1
	}
	return strings.Compare(a, b)
}

// hasPrefix reports whether version starts with all components of prefix.
func hasPrefix(version, prefix string) bool {
	vc := strings.Split(version, ".")
	pc := strings.Split(prefix, ".")
	if len(pc) > len(vc) {
		return false
	}
	for i := range pc {
		if compareComponent(vc[i], pc[i]) != 0 {
			return false
		}
	}
	return true
}
