package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/infrastructure/storage"
)

const (
	objectsDir  = "objects"
	metadataDir = "metadata"
)

// Storage keeps object bytes and their metadata in two parallel trees under
// basePath. Metadata files are JSON maps named <key>.json.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	for _, dir := range []string{objectsDir, metadataDir} {
		if err := os.MkdirAll(filepath.Join(basePath, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string, metadata domain.Metadata) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if err := writeAtomic(s.objectPath(key), func(f *os.File) error {
		_, err := io.Copy(f, body)
		return err
	}); err != nil {
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := s.writeMetadata(key, metadata); err != nil {
		return err
	}
	return nil
}

func (s *Storage) Get(_ context.Context, key string) (*domain.StoredObject, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	f, err := os.Open(s.objectPath(key))
	if err != nil {
		return nil, mapError("open object", key, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	meta, err := s.readMetadata(key)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &domain.StoredObject{Body: f, Size: info.Size(), Metadata: meta}, nil
}

func (s *Storage) Head(_ context.Context, key string) (domain.Metadata, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.objectPath(key)); err != nil {
		return nil, mapError("stat object", key, err)
	}
	return s.readMetadata(key)
}

func (s *Storage) List(_ context.Context, prefix string) ([]domain.ObjectInfo, error) {
	root := filepath.Join(s.basePath, objectsDir)

	var out []domain.ObjectInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, domain.ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects %s: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Storage) ReplaceMetadata(_ context.Context, key string, metadata domain.Metadata) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if _, err := os.Stat(s.objectPath(key)); err != nil {
		return mapError("replace metadata", key, err)
	}
	return s.writeMetadata(key, metadata)
}

func (s *Storage) Delete(_ context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.objectPath(key)); err != nil {
		return mapError("delete object", key, err)
	}
	if err := os.Remove(s.metadataPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete metadata %s: %w", key, err)
	}
	return nil
}

func (s *Storage) URL(key string) string {
	abs, err := filepath.Abs(s.objectPath(key))
	if err != nil {
		abs = s.objectPath(key)
	}
	return "file://" + filepath.ToSlash(abs)
}

func (s *Storage) objectPath(key string) string {
	return filepath.Join(s.basePath, objectsDir, filepath.FromSlash(key))
}

func (s *Storage) metadataPath(key string) string {
	return filepath.Join(s.basePath, metadataDir, filepath.FromSlash(key)+".json")
}

func (s *Storage) readMetadata(key string) (domain.Metadata, error) {
	raw, err := os.ReadFile(s.metadataPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Metadata{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", key, err)
	}
	var meta map[string]string
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", key, err)
	}
	return storage.NormalizeKeys(meta), nil
}

func (s *Storage) writeMetadata(key string, metadata domain.Metadata) error {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode metadata %s: %w", key, err)
	}
	if err := writeAtomic(s.metadataPath(key), func(f *os.File) error {
		_, err := f.Write(raw)
		return err
	}); err != nil {
		return fmt.Errorf("write metadata %s: %w", key, err)
	}
	return nil
}

// writeAtomic writes through a temp file in the target directory and renames
// it into place.
func writeAtomic(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func mapError(operation, key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return storage.NotFound(operation, key, err)
	}
	return fmt.Errorf("%s %s: %w", operation, key, err)
}
