package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Client wraps the AWS S3 client for report archival.
type S3Client struct {
	client *s3.Client
	bucket string
}

// NewS3Client creates a new S3 client using the default credential chain.
func NewS3Client(ctx context.Context, bucket string) (*S3Client, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Client{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// UploadReport stores a finished report PDF under the given key.
func (s *S3Client) UploadReport(ctx context.Context, key string, pdf []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(pdf),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(pdf))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report to S3: %w", err)
	}
	log.Debug().Str("bucket", s.bucket).Str("key", key).Int("size", len(pdf)).Msg("archived report")
	return nil
}

// Bucket returns the configured bucket name.
func (s *S3Client) Bucket() string { return s.bucket }
