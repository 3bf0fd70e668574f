// Package redis provides a Redis-backed referenced-key source for media
// reconciliation, built on go-redis.
//
// The referencing application maintains a set of live file keys (SADD on
// store, SREM on delete); a KeySource reads that set for the media cleaner:
//
//	client, err := redis.Connect(ctx, cfg.RedisURL)
//	if err != nil {
//		log.Fatal(err)
//	}
//	source, err := redis.NewKeySource(client, "media:poster:keys")
//	...
//	cleaner := media.NewCleaner(source, store)
package redis
