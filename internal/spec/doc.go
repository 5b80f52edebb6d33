// Package spec parses and evaluates package dependency specifications.
//
// A specification is the conda style "name [version [build]]" string found in
// recipe requirements and in package index records, for example:
//
//	python
//	numpy >=1.7,<1.10
//	numpy 1.8.1 py27_0
//	numpy x.x
//
// ParseSpecifications consolidates several specification lines into a single
// MatchSpec per package name. The "x.x" fragment is removed from the version
// constraint and recorded on MatchSpec.Pin instead: it means "pin the minor
// version while the build matrix is expanded" and is not a constraint.
//
// Version constraints support AND (","), OR ("|"), the comparison operators
// ==, !=, >=, <=, >, <, ~= and =, and prefix matching ("1.8", "1.8*",
// "1.10.*"). Versions are ordered with hashicorp/go-version and fall back to a
// component wise comparison for strings it cannot parse.
package spec
