// Package archive stores generated transmittal PDFs in an S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vijay-1103/transmittal-craft/internal/config"
	"github.com/vijay-1103/transmittal-craft/internal/models"
)

const pdfContentType = "application/pdf"

// Storage wraps the MinIO client and the archive bucket
type Storage struct {
	client *minio.Client
	bucket string
	region string
}

// New creates a MinIO client from the archive config
func New(cfg config.ArchiveConfig) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket creates the archive bucket when it does not exist yet
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ObjectKey is transmittals/<year>/<number>.pdf, falling back to the id for
// records that have no number.
func ObjectKey(t *models.Transmittal) string {
	name := t.ID
	if t.TransmittalNumber != nil {
		name = *t.TransmittalNumber
	}
	year := t.TransmittalDate.Year()
	if t.GeneratedDate != nil {
		year = t.GeneratedDate.Year()
	}
	return fmt.Sprintf("transmittals/%d/%s.pdf", year, name)
}

// Archive uploads the rendered PDF of t
func (s *Storage) Archive(ctx context.Context, t *models.Transmittal, pdf []byte) error {
	opts := minio.PutObjectOptions{
		ContentType: pdfContentType,
		UserMetadata: map[string]string{
			"transmittal-id": t.ID,
			"status":         string(t.Status),
		},
	}
	_, err := s.client.PutObject(ctx, s.bucket, ObjectKey(t), bytes.NewReader(pdf), int64(len(pdf)), opts)
	if err != nil {
		return fmt.Errorf("upload archive object: %w", err)
	}
	return nil
}

// Fetch downloads an archived PDF
func (s *Storage) Fetch(ctx context.Context, t *models.Transmittal) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ObjectKey(t), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get archive object: %w", err)
	}
	defer obj.Close()
	buf, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read archive object: %w", err)
	}
	return buf, nil
}
