package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements the api subset over a map. Setting failWith makes every
// call return that error.
type fakeAPI struct {
	objects  map[string]fakeObject
	failWith error

	lastTagging     string
	lastContentType string
}

type fakeObject struct {
	data []byte
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: map[string]fakeObject{}}
}

func (f *fakeAPI) PutObject(ctx context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = fakeObject{data: data}
	f.lastTagging = aws.ToString(in.Tagging)
	f.lastContentType = aws.ToString(in.ContentType)
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(ctx context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	o, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(o.data))}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	delete(f.objects, aws.ToString(in.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) HeadObject(ctx context.Context, in *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &awss3.HeadObjectOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}

	prefix := aws.ToString(in.Prefix)
	cursor := aws.ToString(in.ContinuationToken)
	limit := int(aws.ToInt32(in.MaxKeys))

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix && k > cursor {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &awss3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if limit > 0 && len(keys) > limit {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[limit-1])
		keys = keys[:limit]
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func newStoreWithFake() (*Store, *fakeAPI) {
	f := newFakeAPI()
	return &Store{client: f, bucket: "gists"}, f
}

func TestPutGetRoundTrip(t *testing.T) {
	s, f := newStoreWithFake()
	ctx := context.Background()

	err := s.Put(ctx, "blobs/g1", []byte("payload"), "application/octet-stream", store.Tags{"size": "7"})
	require.NoError(t, err)
	assert.Equal(t, "size=7", f.lastTagging)
	assert.Equal(t, "application/octet-stream", f.lastContentType)

	got, err := s.Get(ctx, "blobs/g1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestGetAbsentMapsToNotFound(t *testing.T) {
	s, _ := newStoreWithFake()

	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.False(t, errors.Is(err, common.ErrStorageFault))
}

func TestTransportErrorsWrapStorageFault(t *testing.T) {
	s, f := newStoreWithFake()
	f.failWith = errors.New("connection reset")
	ctx := context.Background()

	err := s.Put(ctx, "k", []byte("x"), "", nil)
	assert.True(t, errors.Is(err, common.ErrStorageFault))

	_, err = s.Get(ctx, "k")
	assert.True(t, errors.Is(err, common.ErrStorageFault))

	err = s.Delete(ctx, "k")
	assert.True(t, errors.Is(err, common.ErrStorageFault))

	_, err = s.Head(ctx, "k")
	assert.True(t, errors.Is(err, common.ErrStorageFault))

	_, err = s.List(ctx, "", 10, "")
	assert.True(t, errors.Is(err, common.ErrStorageFault))
}

func TestDeleteAbsentKeySucceeds(t *testing.T) {
	s, _ := newStoreWithFake()

	err := s.Delete(context.Background(), "never-existed")
	assert.NoError(t, err)
}

func TestHead(t *testing.T) {
	s, _ := newStoreWithFake()
	ctx := context.Background()

	exists, err := s.Head(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Put(ctx, "k", []byte("x"), "", nil))

	exists, err = s.Head(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListPaginatesWithContinuationToken(t *testing.T) {
	s, _ := newStoreWithFake()
	ctx := context.Background()

	for _, k := range []string{"metadata/a.json", "metadata/b.json", "metadata/c.json", "blobs/a"} {
		require.NoError(t, s.Put(ctx, k, []byte("x"), "", nil))
	}

	res, err := s.List(ctx, "metadata/", 2, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"metadata/a.json", "metadata/b.json"}, res.Keys)
	require.True(t, res.Truncated)

	res, err = s.List(ctx, "metadata/", 2, res.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, []string{"metadata/c.json"}, res.Keys)
	assert.False(t, res.Truncated)
}

func TestEncodeTaggingDeterministic(t *testing.T) {
	got := encodeTagging(store.Tags{"version": "3", "created_at": "170"})
	assert.Equal(t, "created_at=170&version=3", got)
}
