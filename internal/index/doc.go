// Package index holds the package index consulted while expanding build
// cases: the set of already available distributions together with their
// versions and dependency specifications.
//
// Records come from three places:
//   - repodata files on disk (JSON or YAML), see LoadFile
//   - remote channels serving <channel>/<subdir>/repodata.json, see Fetcher
//   - directories of built artefacts, see ScanDirectory
//
// An Index is safe for concurrent use. Lookup results are memoised in an LRU
// cache that is purged whenever a record is added.
package index
