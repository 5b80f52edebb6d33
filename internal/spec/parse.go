package spec

import (
	"strings"
)

// ParseSpecifications consolidates specification lines into one MatchSpec per
// package name.
//
// Constraints for the same name are ANDed. Since "|" binds looser than ",",
// a line holding alternatives is distributed over the constraint collected so
// far: "<1.9" and "1.8|1.10" become "<1.9,1.8|<1.9,1.10". A bare name never
// erases a constraint collected from another line. The "x.x" fragment is
// dropped from the constraint and reported through MatchSpec.Pin. Two
// different build strings for the same name are rejected.
func ParseSpecifications(specs []string) (map[string]MatchSpec, error) {
	type accumulated struct {
		alternatives []string
		build        string
		pin          bool
	}

	byName := make(map[string]*accumulated)
	for _, raw := range specs {
		name, version, build, err := splitSpec(raw)
		if err != nil {
			return nil, err
		}
		acc, ok := byName[name]
		if !ok {
			acc = &accumulated{}
			byName[name] = acc
		}
		constraint, pin := stripPin(version)
		acc.pin = acc.pin || pin
		if constraint != "" {
			acc.alternatives = conjoin(acc.alternatives, strings.Split(constraint, "|"))
		}
		if build != "" {
			if acc.build != "" && acc.build != build {
				return nil, malformed(raw, "conflicting build strings %q and %q for %s", acc.build, build, name)
			}
			acc.build = build
		}
	}

	out := make(map[string]MatchSpec, len(byName))
	for name, acc := range byName {
		out[name] = MatchSpec{
			Name:    name,
			Version: strings.Join(acc.alternatives, "|"),
			Build:   acc.build,
			Pin:     acc.pin,
		}
	}
	return out, nil
}

// conjoin ANDs two disjunctions of ","-joined terms.
func conjoin(left, right []string) []string {
	if len(left) == 0 {
		return right
	}
	out := make([]string, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, l+","+r)
		}
	}
	return out
}
