// Package datastore keeps post images in an S3-compatible bucket.
package datastore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/vibeworks/inkwell"
	"github.com/vibeworks/inkwell/internal/config"
)

const (
	ImagePrefix = "images/"

	DefaultPresignExpiry = 7 * 24 * time.Hour
)

var _ inkwell.ImageStore = &Images{}

// objectClient is the part of *minio.Client the store needs.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type Images struct {
	client objectClient

	bucket        string
	region        string
	publicBaseURL string
	presignExpiry time.Duration

	initOnce sync.Once
	initErr  error
}

func NewImages(cfg config.Storage) (*Images, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return newImages(client, cfg, region)
}

func newImages(client objectClient, cfg config.Storage, region string) (*Images, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &Images{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimSuffix(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		presignExpiry: expiry,
	}, nil
}

func (s *Images) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// UploadImage stores file under a fresh key and returns the URL it can be displayed from.
// Files larger than maxSize or whose bytes aren't an image are refused with a 4xx status.
func (s *Images) UploadImage(ctx context.Context, file inkwell.Upload, maxSize int64) (string, error) {
	if file.Reader == nil {
		return "", inkwell.Statusf(400, "No image provided")
	}
	if file.ContentType != "" && !strings.HasPrefix(file.ContentType, "image/") {
		return "", inkwell.Statusf(415, "Only image uploads are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(file.Reader, maxSize+1))
	if err != nil {
		return "", fmt.Errorf("couldn't read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return "", inkwell.Statusf(413, "Image is too large, the maximum size is %s", humanize.IBytes(uint64(maxSize)))
	}
	if len(data) == 0 {
		return "", inkwell.Statusf(400, "Image is empty")
	}

	// The declared type comes from the client, the sniffed one from the bytes
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", inkwell.Statusf(415, "Only image uploads are allowed")
	}

	key, err := imageKey(file.Name, contentType)
	if err != nil {
		return "", err
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("couldn't upload image: %w", err)
	}

	return s.URL(ctx, key)
}

// URL returns the address key is served from.
func (s *Images) URL(ctx context.Context, key string) (string, error) {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("couldn't presign image url: %w", err)
	}
	return u.String(), nil
}

func (s *Images) DeleteImage(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, ImagePrefix) || strings.Contains(key, "..") {
		return inkwell.Statusf(400, "Invalid image key")
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("couldn't delete image: %w", err)
	}
	return nil
}

func imageKey(name, contentType string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("couldn't generate image id: %w", err)
	}
	ext := strings.ToLower(path.Ext(name))
	if ext == "" || mime.TypeByExtension(ext) != contentType {
		ext = ""
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return ImagePrefix + id.String() + ext, nil
}
