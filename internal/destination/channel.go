package destination

import (
	"context"
	"fmt"
	"path"
	"strings"

	"buildall/internal/distribution"
	"buildall/internal/hosting"
	"buildall/pkg/logging"
)

// HostingClient is the part of hosting.Client a ChannelDestination uses.
type HostingClient interface {
	DistributionExists(ctx context.Context, owner, name, version, basename string) (bool, error)
	DistributionOnChannel(ctx context.Context, owner, channel, basename string) (bool, error)
	AddToChannel(ctx context.Context, owner, channel, name, version string) error
	CopyToOwner(ctx context.Context, req hosting.CopyRequest) error
	Upload(ctx context.Context, req hosting.UploadRequest) error
}

// ChannelDestination publishes to a channel of an owner on a hosting service.
type ChannelDestination struct {
	Owner   string
	Channel string
	client  HostingClient
}

// FromSpec parses "owner" (the main channel) or "owner/channels/channel".
func FromSpec(spec string, client HostingClient) (*ChannelDestination, error) {
	parts := strings.Split(spec, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return &ChannelDestination{Owner: parts[0], Channel: "main", client: client}, nil
	case len(parts) == 3 && parts[0] != "" && parts[2] != "":
		return &ChannelDestination{Owner: parts[0], Channel: parts[2], client: client}, nil
	default:
		return nil, fmt.Errorf("invalid channel %q: expected owner or owner/channels/channel", spec)
	}
}

// MakeAvailable makes sure the distribution ends up on the channel:
//
//   - already on the channel: nothing to do
//   - already uploaded by the owner: add it to the channel
//   - just built: upload it
//   - found on another owner's channel: copy it across
func (c *ChannelDestination) MakeAvailable(ctx context.Context, dist *distribution.Distribution, location string, justBuilt bool) error {
	name := basename(dist)

	withOwner, err := c.client.DistributionExists(ctx, c.Owner, dist.Name(), dist.Version(), name)
	if err != nil {
		return fmt.Errorf("failed to inspect %s for %s: %w", c.Owner, dist, err)
	}
	onChannel, err := c.client.DistributionOnChannel(ctx, c.Owner, c.Channel, name)
	if err != nil {
		return fmt.Errorf("failed to inspect %s/%s for %s: %w", c.Owner, c.Channel, dist, err)
	}

	switch {
	case onChannel && !justBuilt:
		logging.Info("Destination", "Nothing to be done for %s - it is already on %s/%s", dist.Name(), c.Owner, c.Channel)
	case onChannel:
		logging.Warn("Destination", "Assuming the distribution we've just built and the one on %s/%s are the same", c.Owner, c.Channel)
	case withOwner:
		if justBuilt {
			logging.Warn("Destination", "Assuming the distribution we've just built and the one owned by %s are the same", c.Owner)
		}
		logging.Info("Destination", "Adding existing %s to the %s/%s channel", dist, c.Owner, c.Channel)
		if err := c.client.AddToChannel(ctx, c.Owner, c.Channel, dist.Name(), dist.Version()); err != nil {
			return fmt.Errorf("failed to add %s to %s/%s: %w", dist, c.Owner, c.Channel, err)
		}
	case justBuilt:
		logging.Info("Destination", "Uploading %s to the %s channel", dist.Name(), c.Channel)
		err := c.client.Upload(ctx, hosting.UploadRequest{
			Owner:    c.Owner,
			Name:     dist.Name(),
			Version:  dist.Version(),
			Basename: name,
			Path:     location,
			Summary:  dist.Meta.About.Summary,
			License:  dist.Meta.About.License,
			Channels: []string{c.Channel},
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", dist, err)
		}
	case isURL(location):
		source := SourceOwner(location)
		logging.Info("Destination", "Copying %s from %s to %s/%s", dist, source, c.Owner, c.Channel)
		err := c.client.CopyToOwner(ctx, hosting.CopyRequest{
			FromOwner: source,
			ToOwner:   c.Owner,
			ToChannel: c.Channel,
			Name:      dist.Name(),
			Version:   dist.Version(),
			Basename:  name,
		})
		if err != nil {
			return fmt.Errorf("failed to copy %s from %s: %w", dist, source, err)
		}
	default:
		logging.Debug("Destination", "%s exists at %s, which cannot be copied to %s/%s", dist, location, c.Owner, c.Channel)
	}
	return nil
}

func (c *ChannelDestination) String() string {
	return fmt.Sprintf("channel %s/%s", c.Owner, c.Channel)
}

// SourceOwner derives the owner from a channel location such as
// "https://conda.anaconda.org/owner/linux-64/".
func SourceOwner(location string) string {
	return path.Base(path.Dir(strings.TrimRight(location, "/")))
}

func isURL(location string) bool {
	return strings.Contains(location, "http://") || strings.Contains(location, "https://")
}
