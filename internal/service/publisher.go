package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/vilaca/ci-metrics/internal/config"
	"github.com/vilaca/ci-metrics/internal/domain"
)

// ObjectStore is the subset of the minio client used to publish summaries.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Publisher uploads metrics summaries to an S3-compatible bucket.
type Publisher struct {
	store  ObjectStore
	bucket string
	region string
	logger logrus.FieldLogger
}

// NewPublisher creates a publisher writing to bucket through store.
func NewPublisher(store ObjectStore, bucket, region string, logger logrus.FieldLogger) *Publisher {
	return &Publisher{
		store:  store,
		bucket: bucket,
		region: region,
		logger: logger,
	}
}

// NewS3Publisher connects to the S3 endpoint described by cfg.
func NewS3Publisher(cfg config.S3Config, logger logrus.FieldLogger) (*Publisher, error) {
	client, err := minio.New(stripScheme(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return NewPublisher(client, cfg.Bucket, cfg.Region, logger), nil
}

// ObjectName returns the key a summary is stored under.
func ObjectName(projectID, commitSHA string) string {
	return path.Join(projectID, commitSHA, config.MetricsOutputName)
}

// Publish uploads summary and returns its object name. The bucket is created if needed.
func (p *Publisher) Publish(ctx context.Context, projectID string, summary *domain.Summary) (string, error) {
	if err := p.ensureBucket(ctx); err != nil {
		return "", err
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	objectName := ObjectName(projectID, summary.CommitSHA)
	reader := bytes.NewReader(data)

	info, err := p.store.PutObject(ctx, p.bucket, objectName, reader, reader.Size(), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	p.logger.WithFields(logrus.Fields{
		"bucket": p.bucket,
		"object": objectName,
		"size":   info.Size,
	}).Info("Published CI metrics")

	return objectName, nil
}

func (p *Publisher) ensureBucket(ctx context.Context) error {
	exists, err := p.store.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if exists {
		return nil
	}

	if err := p.store.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
	}

	p.logger.WithField("bucket", p.bucket).Info("Created bucket")
	return nil
}

// stripScheme turns "https://host:port" into "host:port"; minio expects a bare endpoint.
func stripScheme(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return u.Host
	}
	return strings.TrimRight(endpoint, "/")
}
