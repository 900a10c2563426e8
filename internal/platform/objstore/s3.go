// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

/*
Package objstore provides S3-compatible object storage for uploaded reference
images and generated assets.

It wraps the AWS SDK v2 S3 client behind a small [Uploader] interface so the
generation service can be tested without network access. Both AWS S3 and
self-hosted MinIO (custom endpoint + path-style addressing) are supported.
*/
package objstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config holds the connection settings for the object store.
type Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// UploadResult describes a stored object.
type UploadResult struct {
	// Key is the bucket-relative object key (persisted in the database).
	Key string `json:"s3_key"`
	// URL is the public URL of the object.
	URL string `json:"url"`
}

// Uploader is the contract consumed by the generation service.
type Uploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*UploadResult, error)
}

// Store implements [Uploader] on top of an S3-compatible bucket.
type Store struct {
	client *s3.Client
	config Config
}

// New builds the AWS SDK client and returns a ready [Store].
//
// Static credentials are used when both keys are configured (MinIO or AWS
// with explicit keys); otherwise the default credential chain applies
// (IAM roles, env vars).
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	var awsConfig aws.Config
	var err error

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("objstore: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			options.UsePathStyle = true
		}
	})

	logger.Info("object store configured",
		slog.String("bucket", cfg.Bucket),
		slog.String("region", cfg.Region),
	)

	return &Store{client: client, config: cfg}, nil
}

// Upload stores the body under a unique key inside the given folder.
//
// # Key Format
//
// <folder>/<uuid>.<ext> — the extension is taken from the original filename,
// defaulting to "jpg" when absent, so each upload is isolated and collisions
// are impossible in practice.
func (store *Store) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*UploadResult, error) {
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), extensionOf(filename))

	_, err := store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(store.config.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("objstore: upload failed: %w", err)
	}

	return &UploadResult{
		Key: key,
		URL: store.publicURL(key),
	}, nil
}

// publicURL builds a browsable URL for a stored key.
func (store *Store) publicURL(key string) string {
	if store.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(store.config.Endpoint, "/"), store.config.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", store.config.Bucket, key)
}

// extensionOf extracts a dot-prefixed file extension, defaulting to ".jpg".
func extensionOf(filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		return ".jpg"
	}
	return ext
}
