package s3

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rewindmesh/artifact"
	"github.com/hupe1980/rewindmesh/core"
)

var _ core.ArtifactStore = (*Store)(nil)

// fakeClient is an in-memory bucket; ListObjectsV2 pages two keys at a time.
type fakeClient struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeClient) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeClient) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeClient) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeClient) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	start := 0
	if in.ContinuationToken != nil {
		for i, k := range keys {
			if k == *in.ContinuationToken {
				start = i
			}
		}
	}
	end := min(start+2, len(keys))
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func TestStore_SaveGetListDelete(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewFromClient(client, Config{Bucket: "b", Prefix: "snapshots/"})

	for _, id := range []string{"c.json", "a.json", "b.bin"} {
		require.NoError(t, store.Save(ctx, "s1", id, []byte(id)))
	}
	require.NoError(t, store.Save(ctx, "s2", "other.json", []byte("x")))

	assert.Equal(t, "application/json", client.types["snapshots/s1/a.json"])
	assert.Equal(t, "application/octet-stream", client.types["snapshots/s1/b.bin"])

	got, err := store.Get(ctx, "s1", "a.json")
	require.NoError(t, err)
	assert.Equal(t, "a.json", string(got))

	ids, err := store.List(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.bin", "c.json"}, ids)

	require.NoError(t, store.Delete(ctx, "s1", "a.json"))
	_, err = store.Get(ctx, "s1", "a.json")
	assert.ErrorIs(t, err, artifact.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "s1", "a.json"), artifact.ErrNotFound)
}

func TestStore_RejectsNestedIDs(t *testing.T) {
	store := NewFromClient(newFakeClient(), Config{Bucket: "b"})
	err := store.Save(context.Background(), "s1", "x/y", nil)
	assert.ErrorIs(t, err, artifact.ErrInvalidID)
}
