package s3

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/infrastructure/storage"
)

// AWSEndpoint is the global S3 endpoint. Public URLs for buckets on it use
// virtual-hosted style; any other endpoint gets path style.
const AWSEndpoint = "s3.amazonaws.com"

type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
}

// Store keeps documents in an S3 bucket (AWS or any S3-compatible service).
type Store struct {
	client   *minio.Client
	bucket   string
	endpoint string
	logger   *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 store: bucket is required")
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = AWSEndpoint
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: endpoint,
		logger:   logger.With("component", "s3_store", "bucket", cfg.Bucket),
	}, nil
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string, metadata domain.Metadata) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (*domain.StoredObject, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError("get object", key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, s.mapError("get object", key, err)
	}
	return &domain.StoredObject{
		Body:     obj,
		Size:     info.Size,
		Metadata: storage.NormalizeKeys(info.UserMetadata),
	}, nil
}

func (s *Store) Head(ctx context.Context, key string) (domain.Metadata, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, s.mapError("head object", key, err)
	}
	return storage.NormalizeKeys(info.UserMetadata), nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	var out []domain.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out = append(out, domain.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified.UTC(),
		})
	}
	return out, nil
}

// ReplaceMetadata copies the object onto itself with a new metadata set,
// keeping its content type.
func (s *Store) ReplaceMetadata(ctx context.Context, key string, metadata domain.Metadata) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return s.mapError("replace metadata", key, err)
	}

	userMetadata := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		userMetadata[k] = v
	}
	if info.ContentType != "" {
		userMetadata["Content-Type"] = info.ContentType
	}

	_, err = s.client.CopyObject(ctx,
		minio.CopyDestOptions{
			Bucket:          s.bucket,
			Object:          key,
			UserMetadata:    userMetadata,
			ReplaceMetadata: true,
		},
		minio.CopySrcOptions{
			Bucket: s.bucket,
			Object: key,
		},
	)
	if err != nil {
		return s.mapError("replace metadata", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return s.mapError("delete object", key, err)
	}
	return nil
}

func (s *Store) URL(key string) string {
	if s.endpoint == AWSEndpoint {
		return fmt.Sprintf("https://%s.%s/%s", s.bucket, AWSEndpoint, key)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.client.EndpointURL().String(), "/"), s.bucket, key)
}

func (s *Store) mapError(operation, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || (resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket") {
		return storage.NotFound(operation, key, err)
	}
	return fmt.Errorf("%s %s: %w", operation, key, err)
}
