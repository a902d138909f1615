// Package s3 provides a core.ArtifactStore backed by AWS S3 or any
// S3-compatible object store (MinIO, LocalStack).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/rewindmesh/artifact"
)

// Client is the subset of the S3 API used by Store.
type Client interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Config holds configuration for Store.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string // Optional custom endpoint (MinIO, LocalStack)
	Prefix   string // Optional key prefix, e.g. "snapshots/"
}

// Store keeps artifacts under <prefix><sessionID>/<artifactID>.
type Store struct {
	client Client
	bucket string
	prefix string
}

// New loads the default AWS configuration and creates a Store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	})
	return NewFromClient(client, cfg), nil
}

// NewFromClient creates a Store from an existing client.
func NewFromClient(client Client, cfg Config) *Store {
	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}
}

func (s *Store) sessionPrefix(sessionID string) string {
	return s.prefix + sessionID + "/"
}

func (s *Store) key(sessionID, artifactID string) (string, error) {
	if sessionID == "" || artifactID == "" || strings.Contains(sessionID, "/") || strings.Contains(artifactID, "/") {
		return "", fmt.Errorf("%w: %q/%q", artifact.ErrInvalidID, sessionID, artifactID)
	}
	return s.sessionPrefix(sessionID) + artifactID, nil
}

// Save uploads (or overwrites) the artifact.
func (s *Store) Save(ctx context.Context, sessionID, artifactID string, data []byte) error {
	key, err := s.key(sessionID, artifactID)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(artifactID)),
	})
	if err != nil {
		return fmt.Errorf("s3 put failed for %s: %w", key, err)
	}
	return nil
}

// Get downloads the artifact or returns artifact.ErrNotFound.
func (s *Store) Get(ctx context.Context, sessionID, artifactID string) ([]byte, error) {
	key, err := s.key(sessionID, artifactID)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, artifact.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get failed for %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()
	return io.ReadAll(out.Body)
}

// List returns the sorted artifact ids stored for the session.
func (s *Store) List(ctx context.Context, sessionID string) ([]string, error) {
	prefix := s.sessionPrefix(sessionID)
	ids := []string{}
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list failed for %s: %w", prefix, err)
		}
		for _, obj := range out.Contents {
			ids = append(ids, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact or returns artifact.ErrNotFound.
func (s *Store) Delete(ctx context.Context, sessionID, artifactID string) error {
	key, err := s.key(sessionID, artifactID)
	if err != nil {
		return err
	}
	// DeleteObject succeeds for missing keys, so probe first.
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return artifact.ErrNotFound
		}
		return fmt.Errorf("s3 head failed for %s: %w", key, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete failed for %s: %w", key, err)
	}
	return nil
}

func contentType(artifactID string) string {
	if strings.HasSuffix(artifactID, ".json") {
		return "application/json"
	}
	return "application/octet-stream"
}
