// Package hosting is a small client for anaconda.org style package hosting
// APIs.
//
// It covers what artefact destinations need: checking whether a
// distribution exists for an owner or on a channel, adding existing
// distributions to a channel, copying distributions between owners and
// uploading freshly built files. Requests go through a retrying HTTP client
// and authenticate with a "token" Authorization header.
package hosting
