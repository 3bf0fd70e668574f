// Package media provides a pluggable media-storage abstraction: uploaded
// files are stored under collision-resistant, filesystem-safe keys through
// interchangeable backends, and stored files can be reconciled against an
// external set of referenced keys to find and remove orphans.
//
// # Storage backends
//
// Every backend implements the Storage interface. The package ships a local
// filesystem backend; an S3-compatible backend lives in
// integration/storage/s3. Callers hold the interface, never a concrete type,
// so backends can be swapped without touching the rest of the application:
//
//	store, err := media.NewLocalStorage("/srv/media")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fileKey, err := store.StoreFile(ctx, header.Filename, file)
//	if err != nil {
//		// Validation errors (media.ErrHiddenFile, media.ErrExtensionNotAllowed, ...)
//		// are recoverable by the caller supplying a corrected name.
//	}
//
//	// Record fileKey in your database; the backend never does this for you.
//
// # File keys
//
// Keys have the shape <base>-<uuid>.<ext>, where base is the validated and
// truncated original name and uuid is a random version-4 UUID. Validation
// rejects empty names, hidden files, path traversal, disallowed characters,
// and disallowed extensions before any I/O happens. See FileNamePolicy.
//
// Storing never overwrites: a backend that finds the generated key already
// present fails with ErrKeyCollision. Given the 122 random bits in the key an
// organic collision is astronomically unlikely, so a collision is logged and
// treated as a sign of corruption or attack rather than retried.
//
// # Reconciliation
//
// Rows get deleted; their files stay behind. A Cleaner compares the keys a
// backend holds against the keys an external KeySource still references and
// deletes the difference, gated behind an injected confirmation:
//
//	cleaner := media.NewCleaner(source, store)
//	report, err := cleaner.DeleteUnused(ctx, media.CleanupOptions{AutoConfirm: true})
//
// Use one storage root (or bucket) per referencing column. If two columns
// share a root, files referenced by one column look unused to the other and
// get deleted.
//
// The cleaner takes no locks: a file stored while reconciliation is running,
// but not yet recorded in the reference source, can be deleted. Run cleanup
// when no uploads are in flight.
package media
