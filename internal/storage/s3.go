package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"asset-store/internal/logging"
)

// S3Config configures the S3 object store client. Endpoint is optional
// and enables S3-compatible services (MinIO etc.) with path-style
// addressing.
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// S3Store is an ObjectStore backed by an S3 bucket.
type S3Store struct {
	client  *s3.S3
	bucket  string
	baseURL string
}

// NewS3Store creates an S3-backed object store.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	awsCfg := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
		baseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	logging.Info("S3 store initialized: bucket=%s region=%s", cfg.Bucket, cfg.Region)
	return &S3Store{
		client:  s3.New(sess),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

// BaseURL returns the URL prefix under which this store's objects live.
func (s *S3Store) BaseURL() string {
	return s.baseURL
}

// Upload stores data under key and returns the bucket-hosted URL.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (url string, err error) {
	start := time.Now()
	defer func() { recordOp("upload", start, err) }()

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

// Download fetches the object behind a URL previously returned by Upload.
func (s *S3Store) Download(ctx context.Context, url string) (data []byte, err error) {
	start := time.Now()
	defer func() { recordOp("download", start, err) }()

	key, err := s.keyFromURL(url)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			err = fmt.Errorf("%w: %s", ErrNotFound, key)
			return nil, err
		}
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer func() {
		if closeErr := out.Body.Close(); closeErr != nil {
			logging.Warn("failed to close s3 object body: %v", closeErr)
		}
	}()

	data, err = io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the object behind a URL. S3 delete is idempotent, so a
// missing object is not reported.
func (s *S3Store) Delete(ctx context.Context, url string) (err error) {
	start := time.Now()
	defer func() { recordOp("delete", start, err) }()

	key, err := s.keyFromURL(url)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// keyFromURL reconstructs the object key by stripping the bucket's base
// URL prefix.
func (s *S3Store) keyFromURL(url string) (string, error) {
	key := strings.TrimPrefix(url, s.baseURL+"/")
	if key == url || key == "" {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	return key, nil
}
