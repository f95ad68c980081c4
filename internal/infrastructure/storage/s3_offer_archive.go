// Package storage archives submitted offer files in object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	appintegration "github.com/saladpride-png/shopify-mirakl-sync/internal/application/integration"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
	infraconfig "github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/config"
)

// Ensure S3OfferArchive implements OfferArchive
var _ appintegration.OfferArchive = (*S3OfferArchive)(nil)

const offerFileContentType = "text/csv; charset=utf-8"

// S3OfferArchive stores every offer file submitted to the marketplace.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, etc.)
type S3OfferArchive struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// S3OfferArchiveOption is a functional option for configuring S3OfferArchive
type S3OfferArchiveOption func(*S3OfferArchive)

// WithLogger sets a custom logger for S3OfferArchive
func WithLogger(logger *zap.Logger) S3OfferArchiveOption {
	return func(s *S3OfferArchive) {
		s.logger = logger
	}
}

// WithClock sets the time source used to build object keys
func WithClock(now func() time.Time) S3OfferArchiveOption {
	return func(s *S3OfferArchive) {
		s.now = now
	}
}

// NewS3OfferArchive creates a new S3OfferArchive from configuration.
// Without static keys the default AWS credential chain is used.
func NewS3OfferArchive(cfg *infraconfig.StorageConfig, opts ...S3OfferArchiveOption) (*S3OfferArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key id and secret access key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3OfferArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(archive)
	}

	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3OfferArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating offer archive bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Lost a race with another instance
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ArchiveOfferFile uploads one submitted offer file and returns its s3:// location
func (s *S3OfferArchive) ArchiveOfferFile(ctx context.Context, syncType integration.SyncType, runID string, csv []byte) (string, error) {
	if len(csv) == 0 {
		return "", errors.New("offer file is empty")
	}

	key := s.objectKey(syncType, runID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(csv),
		ContentType: aws.String(offerFileContentType),
		Metadata: map[string]string{
			"sync-type": syncType.String(),
			"run-id":    runID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload offer file: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.logger.Debug("Offer file archived", zap.String("location", location), zap.Int("bytes", len(csv)))
	return location, nil
}

// objectKey lays files out as <prefix>/<type>/<yyyy>/<mm>/<dd>/<hhmmss>-<run id>.csv
func (s *S3OfferArchive) objectKey(syncType integration.SyncType, runID string) string {
	now := s.now().UTC()
	name := fmt.Sprintf("%s-%s.csv", now.Format("150405"), runID)
	return path.Join(s.prefix, syncType.String(), now.Format("2006/01/02"), name)
}

// Bucket returns the bucket name
func (s *S3OfferArchive) Bucket() string {
	return s.bucket
}
