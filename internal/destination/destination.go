package destination

import (
	"context"
	"fmt"
	"strings"

	"buildall/internal/config"
	"buildall/internal/distribution"
	"buildall/internal/hosting"
)

// Destination receives distributions after the build phase.
type Destination interface {
	// MakeAvailable is called for every distribution of a run. location is
	// the built file when justBuilt is true, otherwise where the
	// distribution was found (a channel URL or a directory).
	MakeAvailable(ctx context.Context, dist *distribution.Distribution, location string, justBuilt bool) error
	String() string
}

// Settings carries what FromURL needs to construct destinations.
type Settings struct {
	HostingURL string
	Token      string
	S3         config.S3Config
	RunID      string
}

// FromURL builds a destination from its string form:
//
//	file:///srv/conda        a local directory
//	s3://bucket/some/prefix  an S3 bucket
//	owner[/channels/name]    a hosting channel
func FromURL(raw string, settings Settings) (Destination, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return nil, fmt.Errorf("empty destination")
	case strings.HasPrefix(raw, "file://"):
		return NewDirectoryDestination(strings.TrimPrefix(raw, "file://"))
	case strings.HasPrefix(raw, "s3://"):
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(raw, "s3://"), "/")
		return NewS3Destination(settings.S3, bucket, prefix, settings.RunID)
	default:
		hostingURL := settings.HostingURL
		if hostingURL == "" {
			hostingURL = config.DefaultHostingURL
		}
		return FromSpec(raw, hosting.NewClient(hostingURL, settings.Token))
	}
}

// basename is the hosting and bucket name of a distribution,
// "<subdir>/<filename>".
func basename(dist *distribution.Distribution) string {
	return dist.Platform.Subdir() + "/" + dist.PkgFilename()
}
