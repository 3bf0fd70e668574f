package media_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediastore/core/media"
)

// fakeStorage is an in-memory Storage recording bulk-delete calls.
type fakeStorage struct {
	mu          sync.Mutex
	keys        map[string]struct{}
	bulkDeletes int
	listErr     error
}

var _ media.Storage = (*fakeStorage)(nil)

func newFakeStorage(keys ...string) *fakeStorage {
	s := &fakeStorage{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

func (s *fakeStorage) StoreFile(ctx context.Context, fileName string, content io.Reader) (string, error) {
	return "", errors.New("not used in cleanup tests")
}

func (s *fakeStorage) FileURL(ctx context.Context, fileKey, rootURL string) (string, error) {
	return rootURL + fileKey, nil
}

func (s *fakeStorage) GetFile(ctx context.Context, fileKey string) (io.ReadCloser, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[fileKey]
	return nil, ok, nil
}

func (s *fakeStorage) DeleteFile(ctx context.Context, fileKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, fileKey)
	return nil
}

func (s *fakeStorage) BulkDeleteFiles(ctx context.Context, fileKeys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkDeletes++
	for _, k := range fileKeys {
		delete(s.keys, k)
	}
	return nil
}

func (s *fakeStorage) ListFileKeys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	return out, nil
}

func (s *fakeStorage) bulkDeleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulkDeletes
}

func staticSource(keys ...string) media.KeySource {
	return media.KeySourceFunc(func(ctx context.Context) ([]string, error) {
		return keys, nil
	})
}

func TestCleanerUnusedKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("difference of stored and referenced", func(t *testing.T) {
		cleaner := media.NewCleaner(staticSource("a.jpg", "b.jpg"), newFakeStorage("a.jpg", "b.jpg", "c.jpg"))
		unused, err := cleaner.UnusedKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c.jpg"}, unused)
	})

	t.Run("reference set equal to stored set", func(t *testing.T) {
		cleaner := media.NewCleaner(staticSource("a.jpg", "b.jpg"), newFakeStorage("a.jpg", "b.jpg"))
		unused, err := cleaner.UnusedKeys(ctx)
		require.NoError(t, err)
		assert.Empty(t, unused)
	})

	t.Run("referenced keys missing on disk are ignored", func(t *testing.T) {
		cleaner := media.NewCleaner(staticSource("a.jpg", "ghost.jpg"), newFakeStorage("a.jpg", "b.jpg"))
		unused, err := cleaner.UnusedKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b.jpg"}, unused)
	})

	t.Run("source error propagates", func(t *testing.T) {
		wantErr := errors.New("column scan failed")
		source := media.KeySourceFunc(func(ctx context.Context) ([]string, error) {
			return nil, wantErr
		})
		cleaner := media.NewCleaner(source, newFakeStorage("a.jpg"))
		_, err := cleaner.UnusedKeys(ctx)
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("storage error propagates", func(t *testing.T) {
		storage := newFakeStorage()
		storage.listErr = errors.New("backend down")
		cleaner := media.NewCleaner(staticSource(), storage)
		_, err := cleaner.UnusedKeys(ctx)
		assert.ErrorIs(t, err, storage.listErr)
	})
}

func TestCleanerDeleteUnused(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty unused set performs zero deletions", func(t *testing.T) {
		storage := newFakeStorage("a.jpg")
		cleaner := media.NewCleaner(staticSource("a.jpg"), storage)

		report, err := cleaner.DeleteUnused(ctx, media.CleanupOptions{AutoConfirm: true})
		require.NoError(t, err)
		assert.Zero(t, report.Unused)
		assert.Zero(t, report.Deleted)
		assert.Zero(t, storage.bulkDeleteCount())
	})

	t.Run("auto confirm deletes everything unused", func(t *testing.T) {
		storage := newFakeStorage("a.jpg", "b.jpg", "c.jpg")
		cleaner := media.NewCleaner(staticSource("a.jpg"), storage)

		report, err := cleaner.DeleteUnused(ctx, media.CleanupOptions{AutoConfirm: true})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Unused)
		assert.Equal(t, 2, report.Deleted)

		keys, err := storage.ListFileKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.jpg"}, keys)
	})

	t.Run("declined confirmation deletes nothing", func(t *testing.T) {
		storage := newFakeStorage("a.jpg", "b.jpg")
		cleaner := media.NewCleaner(staticSource("a.jpg"), storage)

		report, err := cleaner.DeleteUnused(ctx, media.CleanupOptions{
			Confirm: func(ctx context.Context, report media.CleanupReport) (bool, error) {
				return false, nil
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Unused)
		assert.Zero(t, report.Deleted)
		assert.Zero(t, storage.bulkDeleteCount())
	})

	t.Run("no gate at all deletes nothing", func(t *testing.T) {
		storage := newFakeStorage("a.jpg", "b.jpg")
		cleaner := media.NewCleaner(staticSource(), storage)

		report, err := cleaner.DeleteUnused(ctx, media.CleanupOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Unused)
		assert.Zero(t, report.Deleted)
		assert.Zero(t, storage.bulkDeleteCount())
	})

	t.Run("confirmation gate sees the preview", func(t *testing.T) {
		storage := newFakeStorage("a.jpg", "b.jpg", "c.jpg", "d.jpg")
		cleaner := media.NewCleaner(staticSource(), storage)

		var seen media.CleanupReport
		report, err := cleaner.DeleteUnused(ctx, media.CleanupOptions{
			PreviewCount: 2,
			Confirm: func(ctx context.Context, report media.CleanupReport) (bool, error) {
				seen = report
				return true, nil
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 4, seen.Unused)
		assert.Len(t, seen.Sample, 2)
		assert.Equal(t, 4, report.Deleted)
	})

	t.Run("confirmation error aborts", func(t *testing.T) {
		storage := newFakeStorage("a.jpg")
		cleaner := media.NewCleaner(staticSource(), storage)

		wantErr := errors.New("prompt failed")
		_, err := cleaner.DeleteUnused(ctx, media.CleanupOptions{
			Confirm: func(ctx context.Context, report media.CleanupReport) (bool, error) {
				return false, wantErr
			},
		})
		assert.ErrorIs(t, err, wantErr)
		assert.Zero(t, storage.bulkDeleteCount())
	})
}

func TestCleanerAgainstLocalStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newLocalStorage(t, media.WithPolicy(media.NewFileNamePolicy()))

	var referenced []string
	for _, name := range []string{"poster.jpg", "cover.png"} {
		key, err := store.StoreFile(ctx, name, bytes.NewReader([]byte(name)))
		require.NoError(t, err)
		referenced = append(referenced, key)
	}
	orphan, err := store.StoreFile(ctx, "orphan.gif", bytes.NewReader([]byte("gif")))
	require.NoError(t, err)

	cleaner := media.NewCleaner(staticSource(referenced...), store)

	unused, err := cleaner.UnusedKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, unused)

	report, err := cleaner.DeleteUnused(ctx, media.CleanupOptions{AutoConfirm: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)

	keys, err := store.ListFileKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, referenced, keys)
}
