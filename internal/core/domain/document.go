package domain

import (
	"io"
	"time"
)

// StoragePrefix is the object-key namespace for all stored documents.
const StoragePrefix = "documents/"

// CategoryNone is the category of a document that was never classified.
const CategoryNone = "none"

const (
	MetaOriginalName = "original_name"
	MetaFileSize     = "filesize"
	MetaUploadTime   = "upload_time"
	MetaKey          = "key"
	MetaCategory     = "category"
)

// Metadata is the flat string map attached to every stored object.
type Metadata map[string]string

func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Document struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	Category     string    `json:"category"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// StorageKey returns the object key holding the document bytes.
func (d Document) StorageKey() string {
	return StorageKeyFor(d.ID)
}

func StorageKeyFor(documentID string) string {
	return StoragePrefix + documentID
}

// DocumentRecord is the listing view of a stored document.
type DocumentRecord struct {
	Filename     string    `json:"filename"`
	FileURL      string    `json:"file_url"`
	Metadata     Metadata  `json:"metadata"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// StoredObject is an open object body. Callers must close Body.
type StoredObject struct {
	Body     io.ReadCloser
	Size     int64
	Metadata Metadata
}
