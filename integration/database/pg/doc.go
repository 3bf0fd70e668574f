// Package pg provides a PostgreSQL-backed referenced-key source for media
// reconciliation, built on the pgx driver.
//
// A KeySource scans one text column for the file keys an application still
// references; the media cleaner compares that set against what a storage
// backend actually holds:
//
//	source, err := pg.NewKeySource(pool, "movies", "poster")
//	if err != nil {
//		log.Fatal(err)
//	}
//	cleaner := media.NewCleaner(source, store)
//
// Any pgx querier works: a *pgxpool.Pool, a *pgx.Conn, or a pgx.Tx. A
// transaction can also be carried in the context with WithTx, in which case
// the scan runs inside it.
//
// Use one storage root or bucket per column. Keys referenced by a second
// column sharing the same root would look unused to this source's cleaner.
package pg
