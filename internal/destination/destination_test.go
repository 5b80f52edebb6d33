package destination

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildall/internal/config"
	"buildall/internal/distribution"
	"buildall/internal/hosting"
	"buildall/internal/matrix"
	"buildall/internal/recipe"
)

const testRecipe = `package:
  name: pkg-a
  version: "1.0"
about:
  summary: A test package
  license: BSD
requirements:
  build:
    - python
  run:
    - python
`

func testDist(t *testing.T) *distribution.Distribution {
	t.Helper()
	r := recipe.Parse("/recipes/pkg-a", testRecipe)
	c := matrix.MustCase(matrix.Pair{Name: matrix.Python, Version: "2.7"})
	d, err := distribution.Resolve(r, c, recipe.Platform{OS: "linux", Arch: "x86_64"})
	require.NoError(t, err)
	require.Equal(t, "pkg-a-1.0-py27_0.tar.bz2", d.PkgFilename())
	return d
}

func TestFromURL(t *testing.T) {
	dir := t.TempDir()
	s3 := config.S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}

	tests := []struct {
		raw      string
		expected string
		wantErr  bool
	}{
		{raw: "file://" + dir, expected: "directory " + dir},
		{raw: "my-org", expected: "channel my-org/main"},
		{raw: "my-org/channels/dev", expected: "channel my-org/dev"},
		{raw: "s3://artefacts/conda/", expected: "s3://artefacts/conda"},
		{raw: "s3://artefacts", expected: "s3://artefacts/"},
		{raw: "", wantErr: true},
		{raw: "my-org/dev", wantErr: true},
		{raw: "s3:///prefix", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			dest, err := FromURL(tt.raw, Settings{S3: s3, RunID: "run"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dest.String())
		})
	}
}

func TestFromURL_S3RequiresCredentials(t *testing.T) {
	_, err := FromURL("s3://artefacts", Settings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvS3Endpoint)
}

func TestDirectoryDestination(t *testing.T) {
	dist := testDist(t)
	built := filepath.Join(t.TempDir(), dist.PkgFilename())
	require.NoError(t, os.WriteFile(built, []byte("tarball"), 0o644))

	target := filepath.Join(t.TempDir(), "nested", "channel")
	dest, err := NewDirectoryDestination(target)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, dest.MakeAvailable(ctx, dist, built, false))
	_, err = os.Stat(filepath.Join(target, dist.PkgFilename()))
	assert.True(t, os.IsNotExist(err), "existing distributions are not copied")

	require.NoError(t, dest.MakeAvailable(ctx, dist, built, true))
	data, err := os.ReadFile(filepath.Join(target, dist.PkgFilename()))
	require.NoError(t, err)
	assert.Equal(t, "tarball", string(data))
}

func TestDirectoryDestination_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewDirectoryDestination(file)
	assert.Error(t, err)
}

func TestFromSpec(t *testing.T) {
	dest, err := FromSpec("owner", nil)
	require.NoError(t, err)
	assert.Equal(t, "owner", dest.Owner)
	assert.Equal(t, "main", dest.Channel)

	dest, err = FromSpec("owner/channels/my_channel", nil)
	require.NoError(t, err)
	assert.Equal(t, "owner", dest.Owner)
	assert.Equal(t, "my_channel", dest.Channel)

	for _, bad := range []string{"", "owner/", "a/b/c/d", "/channels/x"} {
		_, err := FromSpec(bad, nil)
		assert.Error(t, err, bad)
	}
}

func TestSourceOwner(t *testing.T) {
	assert.Equal(t, "conda-forge", SourceOwner("https://conda.anaconda.org/conda-forge/linux-64/"))
	assert.Equal(t, "conda-forge", SourceOwner("https://conda.anaconda.org/conda-forge/linux-64"))
}

type fakeHosting struct {
	withOwner bool
	onChannel bool
	err       error
	calls     []string
	uploaded  hosting.UploadRequest
	copied    hosting.CopyRequest
}

func (f *fakeHosting) DistributionExists(_ context.Context, owner, name, version, basename string) (bool, error) {
	f.calls = append(f.calls, "exists "+owner+" "+basename)
	return f.withOwner, f.err
}

func (f *fakeHosting) DistributionOnChannel(_ context.Context, owner, channel, basename string) (bool, error) {
	f.calls = append(f.calls, "on-channel "+owner+"/"+channel+" "+basename)
	return f.onChannel, nil
}

func (f *fakeHosting) AddToChannel(_ context.Context, owner, channel, name, version string) error {
	f.calls = append(f.calls, "add "+owner+"/"+channel+" "+name+" "+version)
	return nil
}

func (f *fakeHosting) CopyToOwner(_ context.Context, req hosting.CopyRequest) error {
	f.calls = append(f.calls, "copy")
	f.copied = req
	return nil
}

func (f *fakeHosting) Upload(_ context.Context, req hosting.UploadRequest) error {
	f.calls = append(f.calls, "upload")
	f.uploaded = req
	return nil
}

func TestChannelDestination_MakeAvailable(t *testing.T) {
	const basename = "linux-64/pkg-a-1.0-py27_0.tar.bz2"
	lookups := []string{
		"exists owner " + basename,
		"on-channel owner/dev " + basename,
	}

	tests := []struct {
		name      string
		withOwner bool
		onChannel bool
		justBuilt bool
		location  string
		action    []string
	}{
		{name: "on channel, not built", withOwner: true, onChannel: true, location: "https://conda.anaconda.org/owner/linux-64/"},
		{name: "on channel, just built", withOwner: true, onChannel: true, justBuilt: true, location: "/tmp/pkg.tar.bz2"},
		{name: "with owner, not built", withOwner: true, location: "https://conda.anaconda.org/owner/linux-64/", action: []string{"add owner/dev pkg-a 1.0"}},
		{name: "with owner, just built", withOwner: true, justBuilt: true, location: "/tmp/pkg.tar.bz2", action: []string{"add owner/dev pkg-a 1.0"}},
		{name: "just built", justBuilt: true, location: "/tmp/pkg.tar.bz2", action: []string{"upload"}},
		{name: "on another channel", location: "https://conda.anaconda.org/conda-forge/linux-64/", action: []string{"copy"}},
		{name: "in a local directory", location: "/srv/conda/linux-64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeHosting{withOwner: tt.withOwner, onChannel: tt.onChannel}
			dest, err := FromSpec("owner/channels/dev", client)
			require.NoError(t, err)

			require.NoError(t, dest.MakeAvailable(context.Background(), testDist(t), tt.location, tt.justBuilt))
			assert.Equal(t, append(append([]string{}, lookups...), tt.action...), client.calls)
		})
	}
}

func TestChannelDestination_UploadAndCopyRequests(t *testing.T) {
	ctx := context.Background()
	dist := testDist(t)

	client := &fakeHosting{}
	dest, err := FromSpec("owner", client)
	require.NoError(t, err)

	require.NoError(t, dest.MakeAvailable(ctx, dist, "/tmp/pkg-a-1.0-py27_0.tar.bz2", true))
	assert.Equal(t, hosting.UploadRequest{
		Owner:    "owner",
		Name:     "pkg-a",
		Version:  "1.0",
		Basename: "linux-64/pkg-a-1.0-py27_0.tar.bz2",
		Path:     "/tmp/pkg-a-1.0-py27_0.tar.bz2",
		Summary:  "A test package",
		License:  "BSD",
		Channels: []string{"main"},
	}, client.uploaded)

	require.NoError(t, dest.MakeAvailable(ctx, dist, "https://conda.anaconda.org/conda-forge/linux-64/", false))
	assert.Equal(t, hosting.CopyRequest{
		FromOwner: "conda-forge",
		ToOwner:   "owner",
		ToChannel: "main",
		Name:      "pkg-a",
		Version:   "1.0",
		Basename:  "linux-64/pkg-a-1.0-py27_0.tar.bz2",
	}, client.copied)
}

func TestChannelDestination_InspectError(t *testing.T) {
	client := &fakeHosting{err: errors.New("boom")}
	dest, err := FromSpec("owner", client)
	require.NoError(t, err)

	err = dest.MakeAvailable(context.Background(), testDist(t), "/tmp/x", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

type fakeStore struct {
	bucketExists bool
	madeBuckets  []string
	objects      map[string]string
	metadata     map[string]map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}, metadata: map[string]map[string]string{}}
}

func (f *fakeStore) BucketExists(context.Context, string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.madeBuckets = append(f.madeBuckets, bucket)
	f.bucketExists = true
	return nil
}

func (f *fakeStore) StatObject(_ context.Context, _, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if _, ok := f.objects[key]; !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	}
	return minio.ObjectInfo{Key: key}, nil
}

func (f *fakeStore) FPutObject(_ context.Context, _, key, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[key] = string(data)
	f.metadata[key] = opts.UserMetadata
	return minio.UploadInfo{Key: key}, nil
}

func TestS3Destination_MakeAvailable(t *testing.T) {
	ctx := context.Background()
	dist := testDist(t)
	dir := t.TempDir()
	built := filepath.Join(dir, dist.PkgFilename())
	require.NoError(t, os.WriteFile(built, []byte("tarball"), 0o644))

	store := newFakeStore()
	dest, err := NewS3DestinationWithStore(store, "artefacts", "/conda/", "us-east-1", "run-1")
	require.NoError(t, err)
	key := "conda/linux-64/pkg-a-1.0-py27_0.tar.bz2"
	assert.Equal(t, key, dest.Key(dist))

	// found on a channel and missing from the bucket: nothing we can copy
	require.NoError(t, dest.MakeAvailable(ctx, dist, "https://conda.anaconda.org/conda-forge/linux-64/", false))
	assert.Empty(t, store.objects)
	assert.Equal(t, []string{"artefacts"}, store.madeBuckets)

	// found in a local directory and missing from the bucket: uploaded
	require.NoError(t, dest.MakeAvailable(ctx, dist, dir, false))
	assert.Equal(t, "tarball", store.objects[key])
	assert.Equal(t, map[string]string{"package": "pkg-a-1.0-py27_0", "run-id": "run-1"}, store.metadata[key])

	// already present and not rebuilt: untouched
	store.objects[key] = "old"
	require.NoError(t, dest.MakeAvailable(ctx, dist, dir, false))
	assert.Equal(t, "old", store.objects[key])

	// just built: always replaced
	require.NoError(t, dest.MakeAvailable(ctx, dist, built, true))
	assert.Equal(t, "tarball", store.objects[key])
	assert.Len(t, store.madeBuckets, 1)
}

func TestNewS3DestinationWithStore_RequiresBucket(t *testing.T) {
	_, err := NewS3DestinationWithStore(newFakeStore(), " ", "", "", "")
	assert.Error(t, err)
}
