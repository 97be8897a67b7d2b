// Package s3 implements storage.FileStore against any S3-compatible
// object store (AWS S3, MinIO, etc.).
//
// PRESIGNED URLS:
// The server never proxies file bytes. It signs a short-lived PUT or GET
// URL with its own credentials and hands that to the client, which talks
// to the object store directly. Uploads and downloads therefore don't
// occupy a server connection for the duration of a 50MB transfer, and
// the credentials never leave the server.
package s3

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/xid"

	"github.com/sakif/print-queue/internal/apperror"
	"github.com/sakif/print-queue/internal/storage"
)

// urlExpiry is how long a presigned URL stays valid. Long enough to push
// a 50MB file over a slow uplink, short enough that a leaked URL goes
// stale quickly.
const urlExpiry = 15 * time.Minute

// Config holds the S3 connection settings.
//
// Endpoint is optional: leave it empty for real AWS S3, or point it at a
// MinIO instance (e.g. "http://localhost:9000") for self-hosted storage.
type Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Store implements storage.FileStore on top of an S3 bucket.
type Store struct {
	bucket  string
	client  *s3.Client
	presign *s3.PresignClient
}

var _ storage.FileStore = (*Store)(nil)

// New builds a Store from the given config. The AWS SDK's default config
// chain runs once here; static credentials from the environment override
// it so MinIO deployments work without an AWS account.
func New(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO serves buckets under the path, not a subdomain.
			o.UsePathStyle = true
		}
	})

	return &Store{
		bucket:  cfg.Bucket,
		client:  client,
		presign: s3.NewPresignClient(client),
	}, nil
}

// PresignUpload issues an upload ticket for a new object.
//
// The object key is date-sharded and ends in a fresh xid plus the
// original file extension: "uploads/2026/09/01/cv37rs3pp9olc6atsptg.stl".
// The xid guarantees uniqueness; keeping the extension makes the bucket
// browsable by a human operator.
func (s *Store) PresignUpload(ctx context.Context, fileName string) (*storage.UploadTicket, error) {
	key := s.newObjectKey(fileName)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(urlExpiry))
	if err != nil {
		return nil, apperror.Transport("upload URL signing", err)
	}

	return &storage.UploadTicket{
		FileRef: key,
		URL:     req.URL,
	}, nil
}

// PresignDownload returns a short-lived GET URL for the object behind
// fileRef.
func (s *Store) PresignDownload(ctx context.Context, fileRef string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileRef),
	}, s3.WithPresignExpires(urlExpiry))
	if err != nil {
		return "", apperror.Transport("download URL signing", err)
	}

	return req.URL, nil
}

// Delete removes the object behind fileRef. S3's DeleteObject is
// idempotent — deleting an already-deleted key succeeds.
func (s *Store) Delete(ctx context.Context, fileRef string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileRef),
	})
	if err != nil {
		return apperror.Transport("delete", err)
	}
	return nil
}

func (s *Store) newObjectKey(fileName string) string {
	now := time.Now().UTC()
	name := xid.New().String()
	if ext := path.Ext(fileName); ext != "" {
		name += ext
	}
	return fmt.Sprintf("uploads/%04d/%02d/%02d/%s",
		now.Year(), now.Month(), now.Day(), name)
}
