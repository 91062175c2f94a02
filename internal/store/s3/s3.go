// Package s3 implements store.Store over an S3-compatible bucket using
// aws-sdk-go-v2. It supports MinIO-style deployments through a configurable
// base endpoint and path-style addressing.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/store"
)

// loadDefaultAWSConfig is a seam for testing config.LoadDefaultConfig.
var loadDefaultAWSConfig = config.LoadDefaultConfig

// api is the subset of the SDK client the store uses. Tests substitute a fake.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options configure the S3-backed store.
type Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string // e.g. "http://127.0.0.1:9000/" for MinIO
	AccessKey    string
	SecretKey    string
}

// Store talks to one bucket through the SDK client.
type Store struct {
	client api
	bucket string
}

// NewStore builds the SDK client with static credentials and returns a Store
// bound to opts.Bucket.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &Store{client: client, bucket: opts.Bucket}, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string, tags store.Tags) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if len(tags) > 0 {
		in.Tagging = aws.String(encodeTagging(tags))
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("%w: put %s: %v", common.ErrStorageFault, key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isAbsent(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %v", common.ErrStorageFault, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", common.ErrStorageFault, key, err)
	}
	return data, nil
}

// Delete is idempotent per S3 semantics: deleting an absent key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrStorageFault, key, err)
	}
	return nil
}

func (s *Store) Head(ctx context.Context, key string) (bool, error) {
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isAbsent(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: head %s: %v", common.ErrStorageFault, key, err)
	}
	return true, nil
}

func (s *Store) List(ctx context.Context, prefix string, limit int, cursor string) (store.ListResult, error) {
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if limit > 0 {
		in.MaxKeys = aws.Int32(int32(limit))
	}
	if cursor != "" {
		in.ContinuationToken = aws.String(cursor)
	}

	out, err := s.client.ListObjectsV2(ctx, in)
	if err != nil {
		return store.ListResult{}, fmt.Errorf("%w: list %s: %v", common.ErrStorageFault, prefix, err)
	}

	res := store.ListResult{Keys: make([]string, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		res.Keys = append(res.Keys, aws.ToString(obj.Key))
	}
	if aws.ToBool(out.IsTruncated) {
		res.Truncated = true
		res.NextCursor = aws.ToString(out.NextContinuationToken)
	}
	return res, nil
}

// encodeTagging renders tags in the URL-encoded form PutObject expects.
// Keys are sorted so the output is deterministic.
func encodeTagging(tags store.Tags) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	v := url.Values{}
	for _, k := range keys {
		v.Set(k, tags[k])
	}
	return v.Encode()
}

// isAbsent reports whether err is the SDK's flavor of "no such object".
// GetObject raises NoSuchKey; HeadObject raises the bare NotFound type.
func isAbsent(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
