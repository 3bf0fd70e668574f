package media

import (
	"fmt"
	"io/fs"
	"strconv"
)

// Unrestricted is the sentinel accepted in Config fields to disable
// extension or character checking entirely.
const Unrestricted = "*"

// Config holds environment-based configuration for a local media backend and
// its file-name policy. Designed for env parsing via core/config.
type Config struct {
	Root string `env:"MEDIA_ROOT" envDefault:"./media"`

	// AllowedExtensions is a comma-separated whitelist. Empty means the
	// package defaults; the single element "*" means unrestricted.
	AllowedExtensions []string `env:"MEDIA_ALLOWED_EXTENSIONS" envSeparator:","`

	// AllowedCharacters is the character whitelist. Empty means the package
	// defaults; "*" means unrestricted.
	AllowedCharacters string `env:"MEDIA_ALLOWED_CHARACTERS"`

	// FilePermissions is an octal mode string applied to stored files.
	FilePermissions string `env:"MEDIA_FILE_PERMISSIONS" envDefault:"0640"`

	WorkerPoolSize int `env:"MEDIA_WORKER_POOL_SIZE" envDefault:"10"`
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig() Config {
	return Config{
		Root:            "./media",
		FilePermissions: "0640",
		WorkerPoolSize:  10,
	}
}

// PolicyOptions translates the config's whitelist fields into policy options.
func (cfg Config) PolicyOptions() []PolicyOption {
	var opts []PolicyOption
	switch {
	case len(cfg.AllowedExtensions) == 1 && cfg.AllowedExtensions[0] == Unrestricted:
		opts = append(opts, WithUnrestrictedExtensions())
	case len(cfg.AllowedExtensions) > 0:
		opts = append(opts, WithAllowedExtensions(cfg.AllowedExtensions...))
	}
	switch cfg.AllowedCharacters {
	case "":
	case Unrestricted:
		opts = append(opts, WithUnrestrictedCharacters())
	default:
		opts = append(opts, WithAllowedCharacters(cfg.AllowedCharacters))
	}
	return opts
}

// FileMode parses the configured octal permission string.
func (cfg Config) FileMode() (fs.FileMode, error) {
	if cfg.FilePermissions == "" {
		return DefaultFilePermissions, nil
	}
	mode, err := strconv.ParseUint(cfg.FilePermissions, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: file permissions %q: %v", ErrInvalidConfig, cfg.FilePermissions, err)
	}
	return fs.FileMode(mode), nil
}

// NewLocalStorageFromConfig creates a local backend from environment-based
// configuration. Additional options override config values.
func NewLocalStorageFromConfig(cfg Config, opts ...LocalOption) (*LocalStorage, error) {
	mode, err := cfg.FileMode()
	if err != nil {
		return nil, err
	}

	all := []LocalOption{
		WithFilePermissions(mode),
		WithWorkerPoolSize(cfg.WorkerPoolSize),
		WithPolicy(NewFileNamePolicy(cfg.PolicyOptions()...)),
	}
	all = append(all, opts...)
	return NewLocalStorage(cfg.Root, all...)
}
