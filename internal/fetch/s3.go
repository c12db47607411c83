package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the connection settings for s3:// sources.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Enabled reports whether enough settings are present to connect.
func (c S3Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// S3Fetcher reads objects below a bucket prefix.
type S3Fetcher struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3Fetcher connects to the bucket named in an s3://bucket/prefix source.
func NewS3Fetcher(source string, cfg S3Config) (*S3Fetcher, error) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return nil, fmt.Errorf("invalid s3 source %q", source)
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 source %q requires S3_ENDPOINT", source)
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(strings.TrimSpace(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Fetcher{
		client: client,
		bucket: u.Host,
		prefix: strings.Trim(u.Path, "/"),
	}, nil
}

func (f *S3Fetcher) key(name string) string {
	name = strings.TrimPrefix(name, "/")
	if f.prefix == "" {
		return name
	}
	return f.prefix + "/" + name
}

func (f *S3Fetcher) Location(name string) string {
	return "s3://" + f.bucket + "/" + f.key(name)
}

func (f *S3Fetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	obj, err := f.client.GetObject(ctx, f.bucket, f.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, f.classify(name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, maxDocumentBytes+1))
	if err != nil {
		return nil, f.classify(name, err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("fetch %s: exceeds %d bytes", f.Location(name), maxDocumentBytes)
	}
	return data, nil
}

func (f *S3Fetcher) classify(name string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.StatusCode == 404:
		return &NotFoundError{Location: f.Location(name)}
	case resp.StatusCode == 429 || resp.StatusCode >= 500 || resp.StatusCode == 0:
		return &TransientError{Location: f.Location(name), Err: err}
	}
	return fmt.Errorf("fetch %s: %w", f.Location(name), err)
}

// List returns object keys below dir that match pattern, relative to dir.
func (f *S3Fetcher) List(ctx context.Context, dir, pattern string) ([]string, error) {
	base := f.key(strings.Trim(dir, "/"))
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	var out []string
	for obj := range f.client.ListObjects(ctx, f.bucket, minio.ListObjectsOptions{Prefix: base, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", f.Location(dir), obj.Err)
		}
		rel := strings.TrimPrefix(obj.Key, base)
		ok, err := doublestar.Match(path.Clean(pattern), rel)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", pattern, err)
		}
		if ok {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out, nil
}
