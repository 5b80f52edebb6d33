package index

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"

	"buildall/pkg/logging"
)

// Fetcher downloads repodata from remote channels. Each repodata URL is
// downloaded at most once per Fetcher.
type Fetcher struct {
	client *retryablehttp.Client

	// fetchGroup deduplicates concurrent downloads of the same URL
	fetchGroup singleflight.Group
	mu         sync.RWMutex
	fetched    map[string][]Record
}

// FetcherOption customises a Fetcher.
type FetcherOption func(*retryablehttp.Client)

// WithRetryMax sets the number of retries per request.
func WithRetryMax(n int) FetcherOption {
	return func(c *retryablehttp.Client) { c.RetryMax = n }
}

// WithRetryWait bounds the wait between retries.
func WithRetryWait(min, max time.Duration) FetcherOption {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = min
		c.RetryWaitMax = max
	}
}

// NewFetcher returns a Fetcher using a retrying HTTP client.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	client := retryablehttp.NewClient()
	client.Logger = logging.HTTPLogger("Index")
	client.RetryMax = 3
	for _, opt := range opts {
		opt(client)
	}
	return &Fetcher{client: client, fetched: make(map[string][]Record)}
}

// RepodataURL returns the repodata location for a channel subdirectory.
func RepodataURL(channel, subdir string) string {
	return fmt.Sprintf("%s/%s/repodata.json", strings.TrimRight(channel, "/"), subdir)
}

// FetchChannel downloads and decodes <channel>/<subdir>/repodata.json. Every
// returned record carries the channel URL.
func (f *Fetcher) FetchChannel(ctx context.Context, channel, subdir string) ([]Record, error) {
	url := RepodataURL(channel, subdir)

	f.mu.RLock()
	cached, ok := f.fetched[url]
	f.mu.RUnlock()
	if ok {
		return append([]Record(nil), cached...), nil
	}

	result, err, _ := f.fetchGroup.Do(url, func() (interface{}, error) {
		records, err := f.fetch(ctx, url, channel, subdir)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.fetched[url] = records
		f.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]Record(nil), result.([]Record)...), nil
}

func (f *Fetcher) fetch(ctx context.Context, url, channel, subdir string) ([]Record, error) {
	logging.Debug("Index", "Fetching %s", url)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	records, err := ParseRepodata(data, strings.TrimRight(channel, "/"))
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", channel, err)
	}
	for i := range records {
		if records[i].Subdir == "" {
			records[i].Subdir = subdir
		}
	}
	logging.Debug("Index", "Fetched %d records from %s", len(records), url)
	return records, nil
}
