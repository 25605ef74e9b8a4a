// Package services holds cross-module infrastructure services.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// BackupConfig configures the S3 backup target. AccessKey/SecretKey are
// optional; when empty the default AWS credential chain applies.
type BackupConfig struct {
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
}

// BackupService uploads SQLite database files to S3. Uploads go through
// the multipart manager so large history databases stream instead of
// loading into memory.
type BackupService struct {
	client *s3.Client
	bucket string
	prefix string
	log    zerolog.Logger
}

// NewBackupService creates a backup service
func NewBackupService(ctx context.Context, cfg BackupConfig, log zerolog.Logger) (*BackupService, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("backup bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &BackupService{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		log:    log.With().Str("service", "backup").Logger(),
	}, nil
}

// BackupFile uploads one file under a date-stamped key and returns the key
func (s *BackupService) BackupFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	key := s.objectKey(filepath.Base(path), time.Now().UTC())

	uploader := manager.NewUploader(s.client)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("application/vnd.sqlite3"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.Info().Str("key", key).Str("bucket", s.bucket).Msg("Backup uploaded")
	return key, nil
}

// Health verifies bucket connectivity and permissions
func (s *BackupService) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("backup bucket %s unreachable: %w", s.bucket, err)
	}
	return nil
}

func (s *BackupService) objectKey(filename string, now time.Time) string {
	key := fmt.Sprintf("%s/%s", now.Format("2006-01-02"), filename)
	if s.prefix != "" {
		key = fmt.Sprintf("%s/%s", s.prefix, key)
	}
	return key
}
