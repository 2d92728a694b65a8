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
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cwd-comments/cwd-backend/config"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned when no backup bucket is configured
var ErrNotConfigured = errors.New("backup storage is not configured")

const downloadURLExpiry = 15 * time.Minute

// UploadResult describes a stored backup object
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error)
}

// PresignedRequest is the subset of the presigned request we hand out
type PresignedRequest struct {
	URL string
}

type s3Presigner struct {
	client *s3.PresignClient
}

func (p *s3Presigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error) {
	req, err := p.client.PresignGetObject(ctx, params, optFns...)
	if err != nil {
		return nil, err
	}
	return &PresignedRequest{URL: req.URL}, nil
}

// S3Storage stores comment export backups in an S3 bucket
type S3Storage struct {
	objects   objectAPI
	presigner presignAPI
	bucket    string
	region    string
	baseURL   string
	prefix    string
	now       func() time.Time
}

func NewS3Storage(cfg config.S3Config) (*S3Storage, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	var awsCfg aws.Config
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region:      cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		}
	} else {
		// default credential chain (env, shared config, instance role)
		loaded, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
		if err != nil {
			logger.Warn("Failed to load default AWS config, using region only", map[string]interface{}{
				"error": err.Error(),
			})
			loaded = aws.Config{Region: cfg.Region}
		}
		awsCfg = loaded
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		objects:   client,
		presigner: &s3Presigner{client: s3.NewPresignClient(client)},
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		prefix:    strings.Trim(cfg.BackupPrefix, "/"),
		now:       time.Now,
	}, nil
}

// UploadBackup stores body under <prefix>/<yyyy>/<mm>/<dd>/<uuid>-<name>
func (s *S3Storage) UploadBackup(ctx context.Context, name, contentType string, body []byte) (*UploadResult, error) {
	key := s.backupKey(name)

	_, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error("Failed to upload backup", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    key,
		})
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}

	result := &UploadResult{Key: key, URL: s.objectURL(key)}

	if s.presigner != nil {
		req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(downloadURLExpiry))
		if err != nil {
			logger.Warn("Failed to presign backup download", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		} else {
			result.DownloadURL = req.URL
		}
	}

	logger.Info("Backup uploaded", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
		"size":   len(body),
	})
	return result, nil
}

func (s *S3Storage) backupKey(name string) string {
	date := s.now().UTC().Format("2006/01/02")
	file := fmt.Sprintf("%s-%s", uuid.New().String(), path.Base(name))
	if s.prefix == "" {
		return path.Join(date, file)
	}
	return path.Join(s.prefix, date, file)
}

func (s *S3Storage) objectURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
