package download

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rget/rget/pkg/logging"
)

// Attempter performs one transfer attempt. Satisfied by *Executor; tests
// substitute fakes.
type Attempter interface {
	Do(ctx context.Context, opts Options, offset int64) Outcome
}

// retryState is the only mutable state of a download run. It lives for one
// Run call and is never shared.
type retryState struct {
	attempts int
	started  time.Time
	last     Outcome
}

// Orchestrator drives an Attempter across the retry budget: success ends
// the run, retryable failures back off and try again, fatal failures abort
// immediately no matter how many attempts remain.
type Orchestrator struct {
	Attempter Attempter

	sleep func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(attempter Attempter) *Orchestrator {
	return &Orchestrator{
		Attempter: attempter,
		sleep:     sleepContext,
	}
}

// Run downloads opts.URL to opts.Dest, retrying per the backoff policy.
// On a terminal failure without resume the partial destination is removed;
// with resume it is left in place for a future invocation.
func (o *Orchestrator) Run(ctx context.Context, opts Options) error {
	opts = opts.withDefaults()
	logger := logging.GetLogger()
	state := retryState{started: time.Now()}

	for {
		state.attempts++

		var offset int64
		if opts.Resume {
			if fi, err := os.Stat(opts.Dest); err == nil {
				offset = fi.Size()
			}
		}
		if offset > 0 {
			logger.Info().
				Str("dest", opts.Dest).
				Int64("offset", offset).
				Msg("Resuming partial download")
		}

		outcome := o.Attempter.Do(ctx, opts, offset)
		state.last = outcome

		if outcome.Success() {
			if err := verifyDestination(opts.Dest); err != nil {
				// The transport said success but the file is empty;
				// nothing on disk is worth keeping or resuming.
				removeQuietly(opts.Dest)
				return err
			}
			return nil
		}

		derr := outcome.Err
		if !derr.Retryable() {
			o.cleanupAfterAbort(opts, derr)
			return fmt.Errorf("download aborted after %d attempt(s): %w", state.attempts, derr)
		}
		if state.attempts >= opts.MaxAttempts {
			o.cleanupAfterAbort(opts, derr)
			return fmt.Errorf("download failed, %d attempt(s) exhausted: %w", state.attempts, derr)
		}

		delay := opts.Backoff.Delay(state.attempts, outcome.RetryAfter)
		logger.Warn().
			Err(derr).
			Int("attempt", state.attempts).
			Int("max_attempts", opts.MaxAttempts).
			Dur("backoff", delay).
			Msg("Attempt failed, retrying")
		if err := o.sleep(ctx, delay); err != nil {
			o.cleanupAfterAbort(opts, derr)
			return fmt.Errorf("download interrupted: %w", err)
		}
	}
}

// cleanupAfterAbort enforces the destination invariant on terminal
// failure: without resume no ambiguous partial may remain, and a file that
// blew the size limit is never worth resuming.
func (o *Orchestrator) cleanupAfterAbort(opts Options, derr *Error) {
	if opts.Resume && derr.Kind != KindSizeLimitExceeded {
		return
	}
	removeQuietly(opts.Dest)
}

func verifyDestination(dest string) error {
	fi, err := os.Stat(dest)
	if err != nil {
		return NewError(KindEmptyDownload, 0, fmt.Errorf("destination missing after transfer: %w", err))
	}
	if fi.Size() == 0 {
		return NewError(KindEmptyDownload, 0, fmt.Errorf("destination %s is empty after transfer", dest))
	}
	return nil
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger := logging.GetLogger()
		logger.Warn().Err(err).Str("path", path).Msg("Failed to remove partial file")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
