package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appinv "github.com/erp/invoicing/internal/application/invoicing"
	infraconfig "github.com/erp/invoicing/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultPresignExpiry = 15 * time.Minute

var _ appinv.FileStore = (*S3FileStore)(nil)

// S3FileStore keeps live export files in a bucket of any S3 compatible
// service. Callers get a presigned GET URL instead of a public link.
type S3FileStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	expiry  time.Duration
	logger  *zap.Logger
}

type S3FileStoreOption func(*S3FileStore)

func WithLogger(logger *zap.Logger) S3FileStoreOption {
	return func(s *S3FileStore) { s.logger = logger }
}

// WithPrefix places objects under a key prefix such as "exports/"
func WithPrefix(prefix string) S3FileStoreOption {
	return func(s *S3FileStore) { s.prefix = prefix }
}

func NewS3FileStore(cfg *infraconfig.StorageConfig, opts ...S3FileStoreOption) (*S3FileStore, error) {
	client, err := newS3Client(cfg)
	if err != nil {
		return nil, err
	}
	store := &S3FileStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  cfg.PresignExpiry,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.expiry <= 0 {
		store.expiry = defaultPresignExpiry
	}
	return store, nil
}

// newS3Client builds a client with static credentials. Endpoints without a
// scheme are assumed to be https.
func newS3Client(cfg *infraconfig.StorageConfig) (*s3.Client, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("storage configuration is required")
	case cfg.Bucket == "":
		return nil, errors.New("storage bucket is required")
	case cfg.AccessKeyID == "":
		return nil, errors.New("storage access key is required")
	case cfg.SecretAccessKey == "":
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint %q: %w", endpoint, err)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// EnsureBucket creates the bucket on first start
func (s *S3FileStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating export bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Store uploads data under the first free variant of name
func (s *S3FileStore) Store(ctx context.Context, name string, data []byte, contentType string) (*appinv.StoredFile, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	free, err := availableName(ctx, name, func(ctx context.Context, candidate string) (bool, error) {
		return s.ObjectExists(ctx, s.prefix+candidate)
	})
	if err != nil {
		return nil, err
	}

	key := s.prefix + free
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	link, _, err := s.PresignURL(ctx, key, 0)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Export file uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return &appinv.StoredFile{Name: free, URL: link}, nil
}

// PresignURL signs a GET for key. A zero ttl uses the configured expiry.
func (s *S3FileStore) PresignURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if ttl <= 0 {
		ttl = s.expiry
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, time.Now().Add(ttl), nil
}

// ObjectExists reports whether key is taken. HEAD responses carry no body,
// so a missing key surfaces as types.NotFound.
func (s *S3FileStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	var notFound *types.NotFound
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &notFound):
		return false, nil
	default:
		return false, fmt.Errorf("head %s: %w", key, err)
	}
}

func (s *S3FileStore) Bucket() string {
	return s.bucket
}
