package media

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dmitrymomot/mediastore/pkg/async"
)

// KeySource lists the file keys still referenced by an external record, such
// as a database column. The cleaner consumes nothing else from the caller's
// data layer.
type KeySource interface {
	ListReferencedKeys(ctx context.Context) ([]string, error)
}

// KeySourceFunc adapts a plain function to the KeySource interface.
type KeySourceFunc func(ctx context.Context) ([]string, error)

func (f KeySourceFunc) ListReferencedKeys(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// DefaultPreviewCount is how many unused keys a cleanup report samples when
// CleanupOptions.PreviewCount is not set.
const DefaultPreviewCount = 10

// Cleaner reconciles the keys a backend holds against the keys a KeySource
// still references, and deletes the difference. It is an advisory batch tool:
// it takes no locks, so a file stored while a run is in flight but not yet
// referenced can be deleted (see the package documentation).
type Cleaner struct {
	source  KeySource
	storage Storage
	pool    *async.Pool
	log     *slog.Logger
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithCleanerPool shares an existing worker pool for the concurrent set
// fetches instead of creating one.
func WithCleanerPool(pool *async.Pool) CleanerOption {
	return func(c *Cleaner) {
		if pool != nil {
			c.pool = pool
		}
	}
}

// WithCleanerLogger sets the logger. Defaults to slog.Default().
func WithCleanerLogger(log *slog.Logger) CleanerOption {
	return func(c *Cleaner) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCleaner creates a cleaner comparing storage against source.
func NewCleaner(source KeySource, storage Storage, opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		source:  source,
		storage: storage,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pool == nil {
		c.pool = async.NewPool(2)
	}
	return c
}

// UnusedKeys returns the keys present in storage but absent from the
// reference source. Both sets are fetched concurrently. The result is sorted
// so previews and tests are deterministic.
func (c *Cleaner) UnusedKeys(ctx context.Context) ([]string, error) {
	referencedFut := async.Call(ctx, c.pool, c.source.ListReferencedKeys)
	storedFut := async.Call(ctx, c.pool, c.storage.ListFileKeys)

	referenced, err := referencedFut.Await()
	if err != nil {
		return nil, err
	}
	stored, err := storedFut.Await()
	if err != nil {
		return nil, err
	}

	inUse := make(map[string]struct{}, len(referenced))
	for _, key := range referenced {
		inUse[key] = struct{}{}
	}

	var unused []string
	for _, key := range stored {
		if _, ok := inUse[key]; !ok {
			unused = append(unused, key)
		}
	}
	sort.Strings(unused)
	return unused, nil
}

// CleanupOptions control a DeleteUnused run.
type CleanupOptions struct {
	// PreviewCount caps how many unused keys the report samples, so an
	// operator can sanity-check for a misconfigured reference source (e.g.
	// the wrong column) before mass deletion. Defaults to
	// DefaultPreviewCount when zero or negative.
	PreviewCount int

	// AutoConfirm skips the confirmation gate. For unattended runs.
	AutoConfirm bool

	// Confirm is the injected confirmation gate, consulted when AutoConfirm
	// is false. The cleaner itself never performs console I/O; wire an
	// interactive prompt here if you want one. A nil Confirm with
	// AutoConfirm false means nothing is deleted.
	Confirm func(ctx context.Context, report CleanupReport) (bool, error)
}

// CleanupReport describes what a DeleteUnused run found and did.
type CleanupReport struct {
	Unused  int      // how many unused keys were found
	Sample  []string // up to PreviewCount example keys
	Deleted int      // how many keys were actually deleted
}

// DeleteUnused computes the unused key set and, if confirmed, bulk-deletes
// it. An empty unused set performs zero deletions. The returned report is
// valid even when deletion was declined or failed.
func (c *Cleaner) DeleteUnused(ctx context.Context, opts CleanupOptions) (CleanupReport, error) {
	unused, err := c.UnusedKeys(ctx)
	if err != nil {
		return CleanupReport{}, err
	}

	previewCount := opts.PreviewCount
	if previewCount <= 0 {
		previewCount = DefaultPreviewCount
	}

	report := CleanupReport{
		Unused: len(unused),
		Sample: unused[:min(previewCount, len(unused))],
	}
	if len(unused) == 0 {
		return report, nil
	}

	confirmed := opts.AutoConfirm
	if !confirmed && opts.Confirm != nil {
		confirmed, err = opts.Confirm(ctx, report)
		if err != nil {
			return report, err
		}
	}
	if !confirmed {
		c.log.InfoContext(ctx, "unused media files left in place, deletion not confirmed",
			slog.Int("unused", report.Unused))
		return report, nil
	}

	if err := c.storage.BulkDeleteFiles(ctx, unused); err != nil {
		return report, err
	}
	report.Deleted = len(unused)

	c.log.InfoContext(ctx, "deleted unused media files", slog.Int("deleted", report.Deleted))
	return report, nil
}
