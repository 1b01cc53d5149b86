package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/searchd/internal/ingest"
)

// serveContext builds a *cli.Context pre-loaded with serveCommand's flags,
// the standard way to exercise a urfave/cli Action's flag parsing without
// invoking app.Run (and, for "serve", without binding a real listener).
func serveContext(t *testing.T, args []string) *cli.Context {
	t.Helper()
	app := &cli.App{Name: "searchd"}
	cmd := serveCommand(zerolog.Nop())

	fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
	for _, f := range cmd.Flags {
		require.NoError(t, f.Apply(fs))
	}
	require.NoError(t, fs.Parse(args))
	return cli.NewContext(app, fs, nil)
}

func TestLoadConfigWithOverrides_NoFlagsUsesDefaults(t *testing.T) {
	c := serveContext(t, []string{"--config=" + filepath.Join(t.TempDir(), "missing.toml")})

	cfg, err := loadConfigWithOverrides(c)
	require.NoError(t, err)
	assert.Empty(t, cfg.Directories)
	assert.NotZero(t, cfg.ThreadCount, "Default() seeds ThreadCount from runtime.NumCPU")
}

func TestLoadConfigWithOverrides_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "searchd.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
server_address = "127.0.0.1:9000"
thread_count = 1
directories = ["/from-file"]
`), 0o644))

	c := serveContext(t, []string{
		"--config=" + tomlPath,
		"--thread-count=7",
		"--directory=/from-flag",
	})

	cfg, err := loadConfigWithOverrides(c)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddress, "unset flag must keep the file's value")
	assert.Equal(t, 7, cfg.ThreadCount, "set flag must override the file's value")
	assert.Equal(t, []string{"/from-flag"}, cfg.Directories, "set flag must override the file's value")
}

func TestServeCommand_ValidateRejectsNoDirectories(t *testing.T) {
	c := serveContext(t, []string{"--config=" + filepath.Join(t.TempDir(), "missing.toml")})

	cfg, err := loadConfigWithOverrides(c)
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err, "serve must refuse to start with no --directory and no configured directories")
}

func TestBenchmark_ProducesOneSamplePerThreadCount(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("apple banana"), 0o644))

	files, err := ingest.ScanDirectory(dir, ingest.Filter{})
	require.NoError(t, err)

	results, err := benchmark(context.Background(), zerolog.Nop(), files, 1, 3, 1)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{results[0].Threads, results[1].Threads, results[2].Threads})
}
