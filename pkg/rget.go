package rget

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rget/rget/pkg/download"
	"github.com/rget/rget/pkg/logging"
	"github.com/rget/rget/pkg/progress"
	"github.com/rget/rget/pkg/sanitize"
)

// Getter validates a request, runs the retry loop and reports the result.
type Getter struct {
	// Executor performs individual attempts. Tests substitute fakes.
	Executor download.Attempter
}

// DownloadFile fetches opts.URL into opts.Dest and returns the final file
// size and elapsed time. The destination's base name is sanitized before
// any filesystem operation; parent directories are created as needed.
func (g *Getter) DownloadFile(ctx context.Context, opts download.Options) (int64, time.Duration, error) {
	logger := logging.GetLogger()

	parsedURL, err := download.ValidateURL(opts.URL)
	if err != nil {
		return 0, 0, err
	}
	if download.IsPrivateHost(parsedURL.Hostname()) {
		logger.Warn().
			Str("host", parsedURL.Hostname()).
			Msg("Target host is loopback or private network space")
	}

	dir, base := filepath.Split(opts.Dest)
	clean, changed := sanitize.Filename(base)
	if changed {
		logger.Warn().
			Str("requested", base).
			Str("sanitized", clean).
			Msg("Destination filename adjusted")
	}
	opts.Dest = filepath.Join(dir, clean)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, 0, fmt.Errorf("creating destination directory: %w", err)
		}
	}

	executor := g.Executor
	var reporter *progress.Reporter
	if !opts.Quiet {
		// Total size is unknown until the response arrives; the reporter
		// logs counts and rate without a percentage.
		reporter = progress.NewReporter(0)
		if ex, ok := executor.(*download.Executor); ok {
			ex.Progress = reporter
		}
		reporter.Start()
		defer reporter.Stop()
	}

	startTime := time.Now()
	if err := download.NewOrchestrator(executor).Run(ctx, opts); err != nil {
		return 0, time.Since(startTime), err
	}
	elapsed := time.Since(startTime)

	fi, err := os.Stat(opts.Dest)
	if err != nil {
		return 0, elapsed, fmt.Errorf("stat destination after download: %w", err)
	}
	fileSize := fi.Size()

	throughput := humanize.Bytes(uint64(float64(fileSize) / elapsed.Seconds()))
	logger.Info().
		Str("dest", opts.Dest).
		Str("size", humanize.Bytes(uint64(fileSize))).
		Str("throughput", fmt.Sprintf("%s/s", throughput)).
		Str("elapsed", fmt.Sprintf("%.3fs", elapsed.Seconds())).
		Msg("Complete")
	return fileSize, elapsed, nil
}
