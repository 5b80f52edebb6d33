package builder

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"buildall/internal/distribution"
	"buildall/internal/index"
	"buildall/pkg/logging"
)

// ChannelIndexer fetches the records of a remote channel. *index.Fetcher
// implements it.
type ChannelIndexer interface {
	FetchChannel(ctx context.Context, channel, subdir string) ([]index.Record, error)
}

// FindExistingBuiltDists pairs every distribution with where it already
// exists. Inspection channels are consulted first, the channel of the
// matching record becoming the location. Inspection directories are then
// searched for a file of the same name, and the first directory holding it
// becomes the location.
func (b *Builder) FindExistingBuiltDists(ctx context.Context, dists []*distribution.Distribution) ([]Job, error) {
	jobs := make([]Job, len(dists))
	for i, d := range dists {
		jobs[i].Dist = d
	}

	if len(b.opts.InspectChannels) > 0 {
		if b.opts.Indexer == nil {
			return nil, fmt.Errorf("inspection channels configured without a channel indexer")
		}
		inspected, err := fetchChannels(ctx, b.opts.Indexer, b.opts.InspectChannels, b.opts.Platform.Subdir())
		if err != nil {
			return nil, err
		}
		for i := range jobs {
			if rec, ok := inspected.Get(jobs[i].Dist.PkgFilename()); ok {
				jobs[i].Location = channelLocation(rec)
			}
		}
	}

	for _, dir := range b.opts.InspectDirectories {
		present, err := archivesIn(dir)
		if err != nil {
			return nil, err
		}
		for i := range jobs {
			if jobs[i].Location == "" && present[jobs[i].Dist.PkgFilename()] {
				jobs[i].Location = dir
			}
		}
	}

	for _, j := range jobs {
		logging.Debug("Builder", "%s (will be built: %t)", j.Dist, j.NeedsBuild())
	}
	return jobs, nil
}

// channelLocation is the URL of the platform directory a record came from,
// for example "https://conda.anaconda.org/owner/linux-64/".
func channelLocation(rec index.Record) string {
	return strings.TrimRight(rec.Channel, "/") + "/" + rec.Subdir + "/"
}

// archivesIn returns the names of the package archives directly inside dir.
func archivesIn(dir string) (map[string]bool, error) {
	records, err := index.ScanDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", dir, err)
	}
	present := make(map[string]bool, len(records))
	for _, r := range records {
		present[r.Filename] = true
	}
	return present, nil
}

// fetchChannels downloads channels concurrently and merges them in the given
// order, so on a filename clash the earlier channel wins.
func fetchChannels(ctx context.Context, indexer ChannelIndexer, channels []string, subdir string) (*index.Index, error) {
	results := make([][]index.Record, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	for i, channel := range channels {
		g.Go(func() error {
			records, err := indexer.FetchChannel(gctx, channel, subdir)
			if err != nil {
				return fmt.Errorf("failed to fetch channel %s: %w", channel, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := index.New()
	for i := len(results) - 1; i >= 0; i-- {
		merged.Add(results[i]...)
	}
	return merged, nil
}

// LoadIndex builds the package index from repodata files and remote
// channels. Files are applied in order, a later file replacing records of an
// earlier one. Channel records replace file records, and among channels the
// first listed wins.
func LoadIndex(ctx context.Context, indexer ChannelIndexer, files, channels []string, subdir string) (*index.Index, error) {
	idx := index.New()
	for _, f := range files {
		records, err := index.LoadFile(f)
		if err != nil {
			return nil, err
		}
		idx.Add(records...)
	}
	if len(channels) > 0 {
		if indexer == nil {
			return nil, fmt.Errorf("index channels configured without a channel indexer")
		}
		remote, err := fetchChannels(ctx, indexer, channels, subdir)
		if err != nil {
			return nil, err
		}
		idx.Merge(remote)
	}
	logging.Info("Builder", "Loaded %d index records from %d files and %d channels", idx.Len(), len(files), len(channels))
	return idx, nil
}
