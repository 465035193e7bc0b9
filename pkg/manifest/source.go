package manifest

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/navroute/internal/errors"
)

// ObjectGetter reads an S3 object. *s3.Client satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads manifests from files and S3.
type Loader struct {
	// S3 serves s3:// sources. When nil, s3:// sources fail with R010.
	S3 ObjectGetter

	// MaxSize limits the manifest size in bytes (default: 1 MiB).
	MaxSize int64
}

const defaultMaxSize = 1 << 20

// Load reads a manifest from a file path or an s3://bucket/key URL, then
// parses and validates it.
func (l *Loader) Load(ctx context.Context, source string) (*Manifest, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data, source)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads a manifest with a Loader that only serves files.
func Load(ctx context.Context, source string) (*Manifest, error) {
	var l Loader
	return l.Load(ctx, source)
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "s3://") {
		return l.readS3(ctx, source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, errors.New("R010").WithDetailf("%s", source).Wrap(err)
	}
	defer f.Close()
	return l.readAll(f, source)
}

func (l *Loader) readS3(ctx context.Context, source string) ([]byte, error) {
	bucket, key, err := ParseS3URL(source)
	if err != nil {
		return nil, err
	}
	if l.S3 == nil {
		return nil, errors.New("R010").
			WithDetailf("%s: no S3 client configured", source).
			WithSuggestion("Pass --region or configure a Loader with an S3 client")
	}
	out, err := l.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("R010").WithDetailf("%s", source).Wrap(err)
	}
	defer out.Body.Close()
	return l.readAll(out.Body, source)
}

func (l *Loader) readAll(r io.Reader, source string) ([]byte, error) {
	limit := l.MaxSize
	if limit <= 0 {
		limit = defaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.New("R010").WithDetailf("%s", source).Wrap(err)
	}
	if int64(len(data)) > limit {
		return nil, errors.New("R010").WithDetailf("%s is larger than %d bytes", source, limit)
	}
	return data, nil
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(source string) (bucket, key string, err error) {
	u, perr := url.Parse(source)
	if perr != nil || u.Scheme != "s3" || u.Host == "" || strings.Trim(u.Path, "/") == "" {
		return "", "", errors.New("R010").
			WithDetailf("%q is not an s3://bucket/key URL", source)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// S3Config configures NewS3Client.
type S3Config struct {
	Region string

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string

	// UsePathStyle addresses buckets as endpoint/bucket/key.
	UsePathStyle bool
}

// NewS3Client creates an S3 client with static credentials from the
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// environment variables.
func NewS3Client(cfg S3Config) *s3.Client {
	creds := aws.NewCredentialsCache(aws.CredentialsProviderFunc(
		func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "environment",
			}, nil
		}))

	return s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  creds,
		UsePathStyle: cfg.UsePathStyle,
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
}
