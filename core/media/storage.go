package media

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Storage is the capability set every media backend implements. Backends are
// stateless views over an external medium (a disk directory, an object-store
// bucket); the only thing a caller keeps is the returned file key, which it
// records wherever it likes (typically a database column).
type Storage interface {
	// StoreFile validates fileName, derives a unique file key, and persists
	// content under that key. A key that already exists in the backend is a
	// fatal ErrKeyCollision; existing files are never overwritten.
	StoreFile(ctx context.Context, fileName string, content io.Reader) (string, error)

	// FileURL resolves a stored key to an absolute URL. The local backend
	// joins rootURL and the key; object-store backends return a
	// time-limited signed URL and may ignore rootURL entirely.
	FileURL(ctx context.Context, fileKey, rootURL string) (string, error)

	// GetFile opens the stored file. A missing key is not an error: the
	// second return value reports presence, and the reader is nil when the
	// file is absent. The caller closes the reader.
	GetFile(ctx context.Context, fileKey string) (io.ReadCloser, bool, error)

	// DeleteFile removes the stored file. Deleting an absent key is a
	// silent no-op.
	DeleteFile(ctx context.Context, fileKey string) error

	// BulkDeleteFiles removes all the given keys, skipping absent ones.
	BulkDeleteFiles(ctx context.Context, fileKeys []string) error

	// ListFileKeys enumerates every key the backend currently holds. Used
	// by reconciliation; on backends with very large object counts this is
	// a full, unpaginated-from-the-caller's-view scan, so expect it to be
	// proportionally expensive.
	ListFileKeys(ctx context.Context) ([]string, error)
}

// ValidateFileKey rejects caller-supplied keys that could escape the
// backend's namespace. Keys produced by GenerateFileID always pass.
func ValidateFileKey(fileKey string) error {
	if fileKey == "" ||
		strings.HasPrefix(fileKey, ".") ||
		strings.Contains(fileKey, "..") ||
		strings.ContainsAny(fileKey, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidFileKey, fileKey)
	}
	return nil
}
