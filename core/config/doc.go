// Package config provides type-safe environment variable loading with
// per-type caching, backed by the caarlos0/env parser. A .env file in the
// working directory is loaded into the environment once per process.
//
//	type MediaConfig struct {
//		Root     string `env:"MEDIA_ROOT" envDefault:"./media"`
//		PoolSize int    `env:"MEDIA_WORKER_POOL_SIZE" envDefault:"10"`
//	}
//
//	var cfg MediaConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Each configuration type is parsed only once per application lifetime;
// subsequent Load calls for the same type return the cached value, so
// scattered components can load their own config without re-reading the
// environment. Different types cache independently.
//
// MustLoad panics on failure and is meant for application startup:
//
//	config.MustLoad(&cfg)
package config
