// Package matrix computes the version cases a recipe has to be built for.
//
// A Case is a small ordered tuple of (dimension, minor version) pairs such as
// (python 3.5, numpy 1.10). Expand derives the set of cases from a recipe's
// build and run requirements and a package index:
//
//   - python is the primary dimension; one case per matching python
//   - numpy is paired with python through each numpy record's own python
//     dependency
//   - perl and r are orthogonal and multiply whatever cases already exist
//
// A recipe that needs no special versioning yields exactly one empty case.
//
// The pruning passes (KeepTopNMajorVersions, KeepTopNMinorVersions and
// FilterCases) narrow a case list down. They preserve input order and never
// modify a Case, so callers sort with SortCases first when they need a
// reproducible order.
package matrix
