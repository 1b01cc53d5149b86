// Command searchd is the server binary: a urfave/cli App exposing
// "serve" (build an index from directories and answer queries over TCP)
// and "time" (benchmark ingestion across a range of thread counts),
// structured the way the teacher's cmd/lci/main.go builds its cli.App
// (top-level flags plus per-command Flags/Action).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/searchd/internal/config"
	"github.com/standardbeagle/searchd/internal/docid"
	"github.com/standardbeagle/searchd/internal/index"
	"github.com/standardbeagle/searchd/internal/ingest"
	"github.com/standardbeagle/searchd/internal/logging"
	"github.com/standardbeagle/searchd/internal/server"
)

func main() {
	log := logging.New()

	app := &cli.App{
		Name:  "searchd",
		Usage: "in-memory full-text search server",
		Commands: []*cli.Command{
			serveCommand(log),
			timeCommand(log),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("searchd: fatal")
		os.Exit(1)
	}
}

func serveCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "build an index from directories and serve queries over TCP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a searchd.toml; missing file falls back to built-in defaults",
				Value: "searchd.toml",
			},
			&cli.StringFlag{
				Name:  "server-address",
				Usage: "address to bind the TCP listener (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "directory",
				Usage: "directory to ingest, scanned one level deep; repeatable (overrides config)",
			},
			&cli.IntFlag{
				Name:  "thread-count",
				Usage: "number of ingestion and request-handling workers (overrides config); files left over after dividing the ingest set evenly across this many workers are dropped, not assigned to a partial last worker",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "only ingest files matching this doublestar glob; repeatable (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "skip files matching this doublestar glob; repeatable (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(c.Context, log, cfg)
		},
	}
}

// loadConfigWithOverrides resolves a Config from --config (falling back to
// built-in defaults when the file is absent) and then applies any --flag
// that the caller actually set, the way the teacher's
// cmd/lci/main.go:loadConfigWithOverrides layers CLI flags over a loaded
// file.
func loadConfigWithOverrides(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet("server-address") {
		cfg.ServerAddress = c.String("server-address")
	}
	if c.IsSet("directory") {
		cfg.Directories = c.StringSlice("directory")
	}
	if c.IsSet("thread-count") {
		cfg.ThreadCount = c.Int("thread-count")
	}
	if c.IsSet("include") {
		cfg.Include = c.StringSlice("include")
	}
	if c.IsSet("exclude") {
		cfg.Exclude = c.StringSlice("exclude")
	}
	return cfg, nil
}

func runServe(ctx context.Context, log zerolog.Logger, cfg config.Config) error {
	filter := ingest.Filter{Include: cfg.Include, Exclude: cfg.Exclude, MaxFileSize: cfg.MaxFileSize}

	var files []string
	for _, dir := range cfg.Directories {
		found, err := ingest.ScanDirectory(dir, filter)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	log.Info().Int("files", len(files)).Msg("searchd: scanned directories")

	ix := index.New(docid.NewInterner())
	start := time.Now()
	if err := ingest.Run(ctx, log, ix, files, cfg.ThreadCount); err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("searchd: index built")

	srv := server.New(log, ix, cfg.ThreadCount)

	// §6: "serve: ... Exit code 0 on clean shutdown." Shut the server down
	// on SIGINT/SIGTERM instead of leaving acceptLoop to be killed, the way
	// the teacher's cmd/lci/main_server.go:serverCommand does.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		log.Info().Stringer("signal", sig).Msg("searchd: received signal, shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error().Err(err).Msg("searchd: shutdown error")
		}
	}()

	if err := srv.Serve(cfg.ServerAddress); err != nil {
		return err
	}
	log.Info().Msg("searchd: shut down cleanly")
	return nil
}

func timeCommand(log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "time",
		Usage: "benchmark ingestion across a range of thread counts",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "directory",
				Usage: "directory to ingest; repeatable",
			},
			&cli.IntFlag{Name: "thread-start", Required: true},
			&cli.IntFlag{Name: "thread-end", Required: true},
			&cli.StringFlag{
				Name:  "o",
				Usage: "output format: json or yaml",
				Value: "json",
			},
			&cli.IntFlag{
				Name:  "i",
				Usage: "iterations per thread count",
				Value: 1,
			},
		},
		Action: func(c *cli.Context) error {
			start, end := c.Int("thread-start"), c.Int("thread-end")
			if start < 1 || end < start {
				return fmt.Errorf("time: thread-start must be >=1 and <= thread-end")
			}
			iterations := c.Int("i")
			if iterations < 1 {
				return fmt.Errorf("time: iterations must be >=1")
			}

			filter := ingest.Filter{}
			var files []string
			for _, dir := range c.StringSlice("directory") {
				found, err := ingest.ScanDirectory(dir, filter)
				if err != nil {
					return err
				}
				files = append(files, found...)
			}

			results, err := benchmark(c.Context, log, files, start, end, iterations)
			if err != nil {
				return err
			}
			return emit(c.String("o"), results)
		},
	}
}

// timing is one {threads, time} sample of the "time" subcommand's output.
type timing struct {
	Threads int   `json:"threads" yaml:"threads"`
	Time    int64 `json:"time" yaml:"time"`
}

func benchmark(ctx context.Context, log zerolog.Logger, files []string, start, end, iterations int) ([]timing, error) {
	results := make([]timing, 0, end-start+1)
	for threads := start; threads <= end; threads++ {
		var total time.Duration
		for i := 0; i < iterations; i++ {
			ix := index.New(docid.NewInterner())
			t0 := time.Now()
			if err := ingest.Run(ctx, log, ix, files, threads); err != nil {
				return nil, err
			}
			total += time.Since(t0)
		}
		results = append(results, timing{
			Threads: threads,
			Time:    total.Nanoseconds() / int64(iterations),
		})
	}
	return results, nil
}

func emit(format string, results []timing) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(results)
	case "json", "":
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(results)
	default:
		return fmt.Errorf("time: unknown output format %q", format)
	}
}
