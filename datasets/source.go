package datasets

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Source opens the files referenced by entries.
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileSource reads paths from the local filesystem.
type FileSource struct{}

// Open implements Source.
func (FileSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// MinioSource reads "s3://bucket/key" paths from an S3-compatible store.
type MinioSource struct {
	client *minio.Client
}

// NewMinioClient creates a client for an S3-compatible endpoint using static
// credentials.
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for %s: %w", endpoint, err)
	}
	return client, nil
}

// NewMinioSource wraps a minio client as a Source.
func NewMinioSource(client *minio.Client) *MinioSource {
	return &MinioSource{client: client}
}

// Open implements Source.
func (s *MinioSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := parseObjectPath(path)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	// GetObject does not hit the network until the first read; Stat surfaces
	// missing objects here instead of inside image.Decode.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to stat object %s: %w", path, err)
	}
	return obj, nil
}

// parseObjectPath splits "s3://bucket/key/with/slashes" into bucket and key.
func parseObjectPath(path string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(path, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 path: %q", path)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 path %q must be s3://bucket/key", path)
	}
	return bucket, key, nil
}

// MultiSource routes paths to a Source by URL scheme. The empty scheme is used
// for plain paths.
type MultiSource map[string]Source

// Open implements Source.
func (m MultiSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	scheme := Scheme(path)
	src, ok := m[scheme]
	if !ok {
		return nil, fmt.Errorf("no source registered for scheme %q (path %s)", scheme, path)
	}
	return src.Open(ctx, path)
}

// Scheme returns the URL scheme of path ("s3" for "s3://b/k"), or "" for
// plain filesystem paths.
func Scheme(path string) string {
	if i := strings.Index(path, "://"); i > 0 {
		return path[:i]
	}
	return ""
}

// decodeImage opens path through src and decodes it with any registered
// image format.
func decodeImage(ctx context.Context, src Source, path string) (image.Image, error) {
	rc, err := src.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
