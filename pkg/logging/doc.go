// Package logging provides the subsystem tagged logger used across buildall.
//
// It is a thin layer over log/slog. Every entry carries a "subsystem" attribute
// so that output from the recipe loader, the matrix resolver, the builder and
// the artefact destinations can be told apart in a single stream:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Builder", "Resolving distributions from %d recipes", len(recipes))
//	logging.Error("Destination", err, "Upload of %s failed", dist)
//
// Logging is a no-op until one of the Init functions has been called, which
// keeps library packages quiet inside tests.
package logging
