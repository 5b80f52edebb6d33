// Package distribution pins a recipe to one version case.
//
// Resolve renders the recipe for the case and rewrites its requirements so
// that "x.x" markers and a bare python run dependency name the case's
// versions. The resulting Distribution is immutable: its build id, filename
// and index record are all derived from the pinned metadata.
package distribution
