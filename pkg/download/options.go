package download

import (
	"time"
)

const (
	// DefaultMaxFileSize bounds how much we will write to disk unless the
	// guard is explicitly disabled.
	DefaultMaxFileSize = int64(5) << 30 // 5 GiB

	DefaultMaxAttempts = 3
	DefaultTimeout     = 30 * time.Second
)

// Options is the immutable description of one download. Built once from
// CLI flags and environment defaults, then passed by value; nothing
// mutates it after construction.
type Options struct {
	// URL is the validated source.
	URL string

	// Dest is the sanitized destination path.
	Dest string

	// MaxAttempts is the total attempt budget, minimum 1.
	MaxAttempts int

	// Timeout bounds each individual attempt, not the whole download.
	Timeout time.Duration

	// UserAgent is sent on every request.
	UserAgent string

	// Resume enables byte-range continuation of an existing partial file.
	Resume bool

	// FollowRedirects controls whether 3xx responses are chased. When
	// false a redirect surfaces as a fatal failure.
	FollowRedirects bool

	// MaxFileSize aborts the transfer once received bytes would exceed
	// it. Zero or negative disables the guard.
	MaxFileSize int64

	// Decompress transparently unpacks a compressed response body while
	// streaming it to disk. Mutually exclusive with Resume.
	Decompress bool

	// Backoff is the retry wait policy.
	Backoff Backoff

	// Quiet suppresses progress reporting.
	Quiet bool
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}
