package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"buildall/pkg/logging"
	pkgstrings "buildall/pkg/strings"
)

// maxErrorBody caps how much of an error response ends up in an APIError.
const maxErrorBody = 200

// Client talks to the hosting API on behalf of one token.
type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

// Option customises a Client.
type Option func(*Client)

// WithRetryMax sets the number of retries per request.
func WithRetryMax(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithRetryWait bounds the wait between retries.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = min
		c.http.RetryWaitMax = max
	}
}

// NewClient returns a client for the API at baseURL. An empty token makes
// anonymous requests.
func NewClient(baseURL, token string, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.Logger = logging.HTTPLogger("Hosting")
	httpClient.RetryMax = 3

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// channelInfo is the body of GET /channels/{owner}/{channel}.
type channelInfo struct {
	Files []struct {
		Basename string `json:"basename"`
	} `json:"files"`
}

// DistributionExists reports whether owner has the file basename
// ("<subdir>/<filename>") for the given package release, on any channel.
func (c *Client) DistributionExists(ctx context.Context, owner, name, version, basename string) (bool, error) {
	err := c.do(ctx, http.MethodGet, distPath(owner, name, version, basename), nil, nil, nil)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ChannelFiles lists the basenames of every file on owner's channel.
func (c *Client) ChannelFiles(ctx context.Context, owner, channel string) ([]string, error) {
	var info channelInfo
	if err := c.do(ctx, http.MethodGet, joinPath("channels", owner, channel), nil, nil, &info); err != nil {
		return nil, err
	}
	files := make([]string, 0, len(info.Files))
	for _, f := range info.Files {
		files = append(files, f.Basename)
	}
	return files, nil
}

// DistributionOnChannel reports whether basename is on owner's channel.
func (c *Client) DistributionOnChannel(ctx context.Context, owner, channel, basename string) (bool, error) {
	files, err := c.ChannelFiles(ctx, owner, channel)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, f := range files {
		if f == basename {
			return true, nil
		}
	}
	return false, nil
}

// AddToChannel adds every file of an existing release of owner to channel.
// The hosting API links by name and version, so all builds of that version
// are added.
func (c *Client) AddToChannel(ctx context.Context, owner, channel, name, version string) error {
	query := url.Values{"package": {name}, "version": {version}}
	return c.do(ctx, http.MethodPost, joinPath("channels", owner, channel)+"?"+query.Encode(), nil, nil, nil)
}

// CopyRequest describes copying a distribution from one owner to another.
type CopyRequest struct {
	FromOwner string
	ToOwner   string
	ToChannel string
	Name      string
	Version   string
	Basename  string
}

// CopyToOwner copies a distribution to another owner's channel.
func (c *Client) CopyToOwner(ctx context.Context, req CopyRequest) error {
	body := map[string]string{"to_owner": req.ToOwner, "to_channel": req.ToChannel}
	path := joinPath("copy", "package", req.FromOwner, req.Name, req.Version) + "/" + escapeBasename(req.Basename)
	return c.do(ctx, http.MethodPost, path, body, nil, nil)
}

// UploadRequest describes a built file to publish.
type UploadRequest struct {
	Owner    string
	Name     string
	Version  string
	Basename string // <subdir>/<filename>
	Path     string // local file
	Summary  string
	License  string
	Channels []string
}

// Upload publishes a built file. The package and release are created when
// missing and a file already present under the same basename is replaced.
func (c *Client) Upload(ctx context.Context, req UploadRequest) error {
	if err := c.ensurePackage(ctx, req); err != nil {
		return err
	}
	if err := c.ensureRelease(ctx, req); err != nil {
		return err
	}

	exists, err := c.DistributionExists(ctx, req.Owner, req.Name, req.Version, req.Basename)
	if err != nil {
		return err
	}
	if exists {
		logging.Info("Hosting", "Distribution %s already exists, removing", req.Basename)
		if err := c.do(ctx, http.MethodDelete, distPath(req.Owner, req.Name, req.Version, req.Basename), nil, nil, nil); err != nil {
			return fmt.Errorf("failed to remove %s: %w", req.Basename, err)
		}
	}

	f, err := os.Open(req.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", req.Path, err)
	}
	defer f.Close()

	query := url.Values{}
	for _, ch := range req.Channels {
		query.Add("channel", ch)
	}
	path := joinPath("upload", req.Owner, req.Name, req.Version) + "/" + escapeBasename(req.Basename)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	logging.Info("Hosting", "Uploading %s/%s/%s/%s to %v", req.Owner, req.Name, req.Version, req.Basename, req.Channels)
	return c.do(ctx, http.MethodPost, path, nil, f, nil)
}

func (c *Client) ensurePackage(ctx context.Context, req UploadRequest) error {
	path := joinPath("package", req.Owner, req.Name)
	err := c.do(ctx, http.MethodGet, path, nil, nil, nil)
	if !IsNotFound(err) {
		return err
	}
	logging.Info("Hosting", "Creating the %s package on %s", req.Name, req.Owner)
	body := map[string]interface{}{"summary": req.Summary, "license": req.License, "public": true}
	return c.do(ctx, http.MethodPost, path, body, nil, nil)
}

func (c *Client) ensureRelease(ctx context.Context, req UploadRequest) error {
	path := joinPath("release", req.Owner, req.Name, req.Version)
	err := c.do(ctx, http.MethodGet, path, nil, nil, nil)
	if !IsNotFound(err) {
		return err
	}
	body := map[string]interface{}{"requirements": []string{}, "announce": false, "description": ""}
	return c.do(ctx, http.MethodPost, path, body, nil, nil)
}

// do sends a request. jsonBody is encoded as JSON; otherwise rawBody, if
// any, is streamed as application/octet-stream. A 2xx response is decoded
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, jsonBody interface{}, rawBody io.ReadSeeker, out interface{}) error {
	target := c.baseURL + "/" + path

	var body interface{}
	contentType := ""
	switch {
	case jsonBody != nil:
		data, err := json.Marshal(jsonBody)
		if err != nil {
			return fmt.Errorf("failed to encode request for %s: %w", target, err)
		}
		body = data
		contentType = "application/json"
	case rawBody != nil:
		body = rawBody
		contentType = "application/octet-stream"
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", target, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(msg),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", target, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} bodies, falling back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return pkgstrings.Truncate(string(body), maxErrorBody)
}

func distPath(owner, name, version, basename string) string {
	return joinPath("dist", owner, name, version) + "/" + escapeBasename(basename)
}

func joinPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

// escapeBasename escapes each part of a "<subdir>/<filename>" basename.
func escapeBasename(basename string) string {
	return joinPath(strings.Split(basename, "/")...)
}
