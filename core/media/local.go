package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/mediastore/pkg/async"
)

// Compile-time check that LocalStorage implements the Storage interface.
var _ Storage = (*LocalStorage)(nil)

// DefaultFilePermissions is applied to stored files: owner read-write,
// group read.
const DefaultFilePermissions fs.FileMode = 0o640

// LocalStorage stores media files in a directory on the local filesystem.
// Good for simple deployments where files living on a single server is
// acceptable. File writes run on a bounded worker pool so large copies don't
// starve concurrent request handling.
type LocalStorage struct {
	root     string
	perm     fs.FileMode
	policy   *FileNamePolicy
	pool     *async.Pool
	poolSize int
	log      *slog.Logger
}

// LocalOption configures a LocalStorage.
type LocalOption func(*LocalStorage)

// WithFilePermissions sets the permission mask applied to stored files.
func WithFilePermissions(perm fs.FileMode) LocalOption {
	return func(s *LocalStorage) {
		s.perm = perm
	}
}

// WithPolicy replaces the default file-name policy.
func WithPolicy(policy *FileNamePolicy) LocalOption {
	return func(s *LocalStorage) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithWorkerPoolSize sets the size of the pool file writes run on.
func WithWorkerPoolSize(size int) LocalOption {
	return func(s *LocalStorage) {
		s.poolSize = size
	}
}

// WithPool shares an existing worker pool instead of creating one.
func WithPool(pool *async.Pool) LocalOption {
	return func(s *LocalStorage) {
		if pool != nil {
			s.pool = pool
		}
	}
}

// WithLocalLogger sets the logger. Defaults to slog.Default().
func WithLocalLogger(log *slog.Logger) LocalOption {
	return func(s *LocalStorage) {
		if log != nil {
			s.log = log
		}
	}
}

// NewLocalStorage creates a local backend rooted at root, creating the
// directory if it does not exist. root should be an absolute path, e.g.
// "/srv/media".
func NewLocalStorage(root string, opts ...LocalOption) (*LocalStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty media root", ErrInvalidConfig)
	}

	s := &LocalStorage{
		root:   root,
		perm:   DefaultFilePermissions,
		policy: NewFileNamePolicy(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		s.pool = async.NewPool(s.poolSize)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create media root: %v", ErrBackendUnavailable, err)
	}
	return s, nil
}

// StoreFile validates fileName, derives a key, and copies content into the
// media root under that key. The collision check runs synchronously before
// the copy is dispatched; O_EXCL on the actual create closes the remaining
// window.
func (s *LocalStorage) StoreFile(ctx context.Context, fileName string, content io.Reader) (string, error) {
	fileID, err := s.policy.GenerateFileID(fileName)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.root, fileID)
	if _, err := os.Lstat(path); err == nil {
		s.logCollision(ctx, fileID)
		return "", fmt.Errorf("%w: %s", ErrKeyCollision, fileID)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", fileID, err)
	}

	fut := s.pool.Exec(ctx, func(ctx context.Context) error {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.perm)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				s.logCollision(ctx, fileID)
				return fmt.Errorf("%w: %s", ErrKeyCollision, fileID)
			}
			return fmt.Errorf("create %s: %w", fileID, err)
		}

		if _, err := io.Copy(f, content); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", fileID, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", fileID, err)
		}

		// O_CREATE is subject to the process umask; chmod enforces the
		// configured mask exactly.
		if err := os.Chmod(path, s.perm); err != nil {
			return fmt.Errorf("chmod %s: %w", fileID, err)
		}
		return nil
	})
	if err := fut.Await(); err != nil {
		return "", err
	}

	return fileID, nil
}

// FileURL joins rootURL and fileKey with exactly one slash between them,
// whether or not rootURL carries a trailing slash.
func (s *LocalStorage) FileURL(_ context.Context, fileKey, rootURL string) (string, error) {
	if err := ValidateFileKey(fileKey); err != nil {
		return "", err
	}
	return strings.TrimSuffix(rootURL, "/") + "/" + fileKey, nil
}

// GetFile opens the stored file. Absent keys return (nil, false, nil).
func (s *LocalStorage) GetFile(_ context.Context, fileKey string) (io.ReadCloser, bool, error) {
	if err := ValidateFileKey(fileKey); err != nil {
		return nil, false, err
	}

	f, err := os.Open(filepath.Join(s.root, fileKey))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open %s: %w", fileKey, err)
	}
	return f, true, nil
}

// DeleteFile removes the stored file. Absent keys are a silent no-op.
func (s *LocalStorage) DeleteFile(_ context.Context, fileKey string) error {
	if err := ValidateFileKey(fileKey); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.root, fileKey)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", fileKey, err)
	}
	return nil
}

// BulkDeleteFiles removes all the given keys on the worker pool, skipping
// absent ones. Stops at the first failure.
func (s *LocalStorage) BulkDeleteFiles(ctx context.Context, fileKeys []string) error {
	fut := s.pool.Exec(ctx, func(ctx context.Context) error {
		for _, fileKey := range fileKeys {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.DeleteFile(ctx, fileKey); err != nil {
				return err
			}
		}
		return nil
	})
	return fut.Await()
}

// ListFileKeys enumerates every file in the media root. Subdirectories are
// skipped; stored keys never contain separators.
func (s *LocalStorage) ListFileKeys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: list media root: %v", ErrBackendUnavailable, err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}

func (s *LocalStorage) logCollision(ctx context.Context, fileID string) {
	s.log.ErrorContext(ctx, "file key clash, the chances are very low; could be malicious or a serious bug",
		slog.String("file_key", fileID))
}
