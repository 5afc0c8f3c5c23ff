package azure

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/infrastructure/storage"
)

// Config selects shared-key auth through ConnectionString, or Entra ID
// (DefaultAzureCredential) against AccountURL when no connection string is set.
type Config struct {
	ConnectionString string
	AccountURL       string
	Container        string
}

// Store keeps documents as block blobs in one Azure Storage container.
type Store struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Container == "" {
		return nil, fmt.Errorf("azure store: container is required")
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:    client,
		container: cfg.Container,
		logger:    logger.With("component", "azure_store", "container", cfg.Container),
	}, nil
}

func newClient(cfg Config) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}
	if cfg.AccountURL == "" {
		return nil, fmt.Errorf("connection string or account url is required")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azblob.NewClient(cfg.AccountURL, cred, nil)
}

// EnsureContainer creates the container when it does not exist yet.
func (s *Store) EnsureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", s.container, err)
	}
	s.logger.Info("storage container ready")
	return nil
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader, _ int64, contentType string, metadata domain.Metadata) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.client.UploadStream(ctx, s.container, key, body, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		Metadata:    toBlobMetadata(metadata),
	})
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (*domain.StoredObject, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		return nil, mapError("download blob", key, err)
	}
	var size int64
	if resp.ContentLength != nil {
		size = *resp.ContentLength
	}
	return &domain.StoredObject{
		Body:     resp.Body,
		Size:     size,
		Metadata: fromBlobMetadata(resp.Metadata),
	}, nil
}

func (s *Store) Head(ctx context.Context, key string) (domain.Metadata, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	props, err := s.blobClient(key).GetProperties(ctx, nil)
	if err != nil {
		return nil, mapError("get blob properties", key, err)
	}
	return fromBlobMetadata(props.Metadata), nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})

	var out []domain.ObjectInfo
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			info := domain.ObjectInfo{Key: *item.Name}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					info.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					info.LastModified = item.Properties.LastModified.UTC()
				}
			}
			out = append(out, info)
		}
	}
	return out, nil
}

// ReplaceMetadata overwrites the blob's metadata set in one call; content
// and properties are untouched.
func (s *Store) ReplaceMetadata(ctx context.Context, key string, metadata domain.Metadata) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.blobClient(key).SetMetadata(ctx, toBlobMetadata(metadata), nil); err != nil {
		return mapError("set blob metadata", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.client.DeleteBlob(ctx, s.container, key, nil); err != nil {
		return mapError("delete blob", key, err)
	}
	return nil
}

func (s *Store) URL(key string) string {
	return s.blobClient(key).URL()
}

func (s *Store) blobClient(key string) *blob.Client {
	return s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(key)
}

func mapError(operation, key string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return storage.NotFound(operation, key, err)
	}
	return fmt.Errorf("%s %s: %w", operation, key, err)
}

func toBlobMetadata(m domain.Metadata) map[string]*string {
	out := make(map[string]*string, len(m))
	for k, v := range m {
		out[k] = &v
	}
	return out
}

func fromBlobMetadata(m map[string]*string) domain.Metadata {
	plain := make(map[string]string, len(m))
	for k, v := range m {
		if v != nil {
			plain[k] = *v
		}
	}
	return storage.NormalizeKeys(plain)
}
