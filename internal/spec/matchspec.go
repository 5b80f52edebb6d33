package spec

import (
	"path"
	"slices"
	"strings"
)

// PinToken is the version fragment meaning "pin the minor version at build time".
const PinToken = "x.x"

// MatchSpec is a consolidated dependency specification for one package.
type MatchSpec struct {
	// Name is the package name.
	Name string
	// Version is the version constraint; empty means unconstrained.
	Version string
	// Build is an optional build string pattern.
	Build string
	// Pin is set when an "x.x" fragment was seen for this package.
	Pin bool
}

// ParseMatchSpec parses a single "name [version [build]]" specification.
func ParseMatchSpec(raw string) (MatchSpec, error) {
	name, version, build, err := splitSpec(raw)
	if err != nil {
		return MatchSpec{}, err
	}
	ms := MatchSpec{Name: name, Build: build}
	ms.Version, ms.Pin = stripPin(version)
	return ms, nil
}

// MustParseMatchSpec is like ParseMatchSpec but panics on error. Intended for
// tests and static tables.
func MustParseMatchSpec(raw string) MatchSpec {
	ms, err := ParseMatchSpec(raw)
	if err != nil {
		panic(err)
	}
	return ms
}

func splitSpec(raw string) (name, version, build string, err error) {
	fields := strings.Fields(raw)
	// "python >= 3": the operator is glued back onto its operand.
	if len(fields) >= 2 && isOperator(fields[1]) {
		if len(fields) == 2 {
			return "", "", "", malformed(raw, "version constraint %q has no operand", fields[1])
		}
		fields = append([]string{fields[0], fields[1] + fields[2]}, fields[3:]...)
	}
	switch len(fields) {
	case 0:
		return "", "", "", malformed(raw, "empty specification")
	case 1:
		name, version = splitGluedOperator(fields[0])
	case 2:
		name, version = fields[0], fields[1]
	case 3:
		name, version, build = fields[0], fields[1], fields[2]
	default:
		return "", "", "", malformed(raw, "expected at most 3 parts, got %d", len(fields))
	}
	if name == "" || strings.ContainsAny(name, "<>=!,|*") {
		return "", "", "", malformed(raw, "invalid package name %q", name)
	}
	if isOperator(version) {
		return "", "", "", malformed(raw, "version constraint %q has no operand", version)
	}
	return name, version, build, nil
}

func isOperator(s string) bool {
	return slices.Contains(operators, s)
}

// stripPin removes "x.x" terms from a version constraint and reports whether
// any were present. An alternative left empty makes the constraint empty.
func stripPin(version string) (string, bool) {
	if version == "" {
		return "", false
	}
	pin := false
	alternatives := strings.Split(version, "|")
	for i, alt := range alternatives {
		var terms []string
		for _, term := range strings.Split(alt, ",") {
			switch term = strings.TrimSpace(term); term {
			case "":
			case PinToken:
				pin = true
			default:
				terms = append(terms, term)
			}
		}
		alternatives[i] = strings.Join(terms, ",")
	}
	if slices.Contains(alternatives, "") {
		return "", pin
	}
	return strings.Join(alternatives, "|"), pin
}

// splitGluedOperator handles "numpy>=1.7" style specs with no separating space.
func splitGluedOperator(field string) (string, string) {
	if i := strings.IndexAny(field, "<>=!~"); i > 0 {
		return field[:i], field[i:]
	}
	return field, ""
}

// String renders the spec in "name [version [build]]" form.
func (m MatchSpec) String() string {
	parts := []string{m.Name}
	version := m.Version
	if version == "" && (m.Pin || m.Build != "") {
		if m.Pin {
			version = PinToken
		} else {
			version = "*"
		}
	}
	if version != "" {
		parts = append(parts, version)
	}
	if m.Build != "" {
		parts = append(parts, m.Build)
	}
	return strings.Join(parts, " ")
}

// IsConstrained reports whether the spec restricts versions or builds.
func (m MatchSpec) IsConstrained() bool {
	return m.Version != "" || m.Build != ""
}

// Match reports whether a concrete package satisfies the spec.
func (m MatchSpec) Match(name, version, build string) bool {
	if name != m.Name {
		return false
	}
	if !m.MatchVersion(version) {
		return false
	}
	if m.Build != "" {
		ok, err := path.Match(m.Build, build)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// MatchVersion reports whether version satisfies the version constraint.
func (m MatchSpec) MatchVersion(version string) bool {
	return MatchVersionConstraint(m.Version, version)
}

// MatchVersionConstraint evaluates a conda version constraint against a
// version. "|" binds looser than ",".
func MatchVersionConstraint(constraint, version string) bool {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == "*" {
		return true
	}
	for _, alternative := range strings.Split(constraint, "|") {
		if matchAll(alternative, version) {
			return true
		}
	}
	return false
}

func matchAll(conjunction, version string) bool {
	for _, term := range strings.Split(conjunction, ",") {
		if !matchTerm(strings.TrimSpace(term), version) {
			return false
		}
	}
	return true
}

var operators = []string{"==", "!=", ">=", "<=", "~=", ">", "<", "="}

func matchTerm(term, version string) bool {
	if term == "" || term == "*" || term == PinToken {
		return true
	}
	for _, op := range operators {
		if !strings.HasPrefix(term, op) {
			continue
		}
		operand := strings.TrimSpace(strings.TrimPrefix(term, op))
		return compareOp(op, version, operand)
	}
	return matchPattern(term, version)
}

func compareOp(op, version, operand string) bool {
	operand = strings.TrimSuffix(strings.TrimSuffix(operand, "*"), ".")
	switch op {
	case "==":
		return CompareVersions(version, operand) == 0
	case "!=":
		return CompareVersions(version, operand) != 0
	case ">=":
		return CompareVersions(version, operand) >= 0
	case "<=":
		return CompareVersions(version, operand) <= 0
	case ">":
		return CompareVersions(version, operand) > 0
	case "<":
		return CompareVersions(version, operand) < 0
	case "=":
		return hasPrefix(version, operand)
	case "~=":
		// Compatible release: >= operand and same prefix minus the last component.
		if CompareVersions(version, operand) < 0 {
			return false
		}
		parts := strings.Split(operand, ".")
		if len(parts) < 2 {
			return true
		}
		return hasPrefix(version, strings.Join(parts[:len(parts)-1], "."))
	}
	return false
}

func matchPattern(term, version string) bool {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(term, "*"), ".")
	if !strings.Contains(trimmed, "*") {
		return hasPrefix(version, trimmed)
	}
	ok, err := path.Match(term, version)
	return err == nil && ok
}
