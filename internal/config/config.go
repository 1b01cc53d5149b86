// Package config resolves this service's settings from, in priority
// order, built-in defaults, an optional searchd.toml file, and CLI flag
// overrides — the same defaults-then-file-then-flags shape as the
// teacher's config.Load/LoadWithRoot, trimmed to the knobs this service
// actually has (server address, directories, thread count, glob
// filters, max file size).
package config

import (
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/searchd/internal/errors"
)

const (
	DefaultServerAddress = "127.0.0.1:8080"
	DefaultMaxFileSize   = 10 * 1024 * 1024 // 10 MiB
)

// Config holds the resolved settings for a single run of the serve
// subcommand.
type Config struct {
	ServerAddress string
	Directories   []string
	ThreadCount   int
	Include       []string
	Exclude       []string
	MaxFileSize   int64
}

// file is the shape of an on-disk searchd.toml; only fields present in
// the file override the defaults already in Config.
type file struct {
	ServerAddress *string  `toml:"server_address"`
	Directories   []string `toml:"directories"`
	ThreadCount   *int     `toml:"thread_count"`
	Include       []string `toml:"include"`
	Exclude       []string `toml:"exclude"`
	MaxFileSize   *int64   `toml:"max_file_size"`
}

// Default returns the built-in defaults, used when no searchd.toml is
// present and no flags override them.
func Default() Config {
	return Config{
		ServerAddress: DefaultServerAddress,
		ThreadCount:   runtime.NumCPU(),
		MaxFileSize:   DefaultMaxFileSize,
	}
}

// Load resolves defaults, then an optional searchd.toml at tomlPath (if
// tomlPath is empty or the file doesn't exist, this step is a no-op). CLI
// overrides are applied afterward by the caller by assigning directly onto
// the returned Config, mirroring cmd/searchd's own flag-then-config
// precedence (see serveCommand.Action).
func Load(tomlPath string) (Config, error) {
	cfg := Default()
	if tomlPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(tomlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.NewConfigError("searchd.toml", tomlPath, err)
	}

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return cfg, errors.NewConfigError("searchd.toml", tomlPath, err)
	}

	if f.ServerAddress != nil {
		cfg.ServerAddress = *f.ServerAddress
	}
	if len(f.Directories) > 0 {
		cfg.Directories = f.Directories
	}
	if f.ThreadCount != nil {
		cfg.ThreadCount = *f.ThreadCount
	}
	if len(f.Include) > 0 {
		cfg.Include = f.Include
	}
	if len(f.Exclude) > 0 {
		cfg.Exclude = f.Exclude
	}
	if f.MaxFileSize != nil {
		cfg.MaxFileSize = *f.MaxFileSize
	}
	return cfg, nil
}

// Validate checks the invariants the serve subcommand needs before
// binding: a positive thread count and at least one directory.
func (c Config) Validate() error {
	if c.ThreadCount < 1 {
		return errors.NewConfigError("thread_count", "", errInvalidThreadCount)
	}
	if len(c.Directories) == 0 {
		return errors.NewConfigError("directories", "", errNoDirectories)
	}
	return nil
}

var (
	errInvalidThreadCount = configErr("thread count must be a positive integer")
	errNoDirectories      = configErr("at least one --directory is required")
)

type configErr string

func (e configErr) Error() string { return string(e) }
