// Package builder drives a buildall run.
//
// A run finds every recipe under a directory, orders the recipes so that
// dependencies come first, resolves each recipe into the distributions of
// its pruned build matrix, checks which of those are already built in the
// inspection channels and directories, builds the rest and finally hands
// every distribution to the configured destinations.
//
// Distributions computed for one recipe are added to a private copy of the
// package index, so recipes later in the order can build against packages
// that do not exist anywhere yet.
package builder
