// Package async provides a bounded worker pool for offloading blocking I/O
// from request-handling goroutines.
//
// A Pool caps the number of tasks running at once; submissions beyond the cap
// queue until a slot frees up. Each submission returns a future that the
// caller awaits:
//
//	pool := async.NewPool(10)
//
//	fut := pool.Exec(ctx, func(ctx context.Context) error {
//		return copyLargeFile(ctx, src, dst)
//	})
//	if err := fut.Await(); err != nil {
//		return err
//	}
//
// Tasks that produce a value use the package-level generic form:
//
//	fut := async.Call(ctx, pool, func(ctx context.Context) ([]string, error) {
//		return listKeys(ctx)
//	})
//	keys, err := fut.Await()
//
// Cancellation is checked while a submission waits for a slot; once a task
// starts it runs to completion. Callers needing a hard deadline wrap the wait
// with AwaitWithTimeout.
package async
