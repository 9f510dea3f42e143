package download

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultBaseDelay  = 1 * time.Second
	DefaultMaxBackoff = 60 * time.Second
)

// Backoff computes the wait between attempts. Deterministic: same attempt
// number and hint always yield the same delay, no jitter. A single
// sequential client cannot cause a thundering herd, so the randomized
// spread used by concurrent downloaders buys nothing here.
type Backoff struct {
	// Base is the delay before the second attempt; each further attempt
	// doubles it. Zero means DefaultBaseDelay.
	Base time.Duration
	// Max caps the exponential growth. Zero means DefaultMaxBackoff.
	Max time.Duration
}

// Delay returns the wait after the given attempt (1-based) failed. A
// positive hint is a server-supplied Retry-After and takes precedence over
// the computed exponential delay for that attempt.
func (b Backoff) Delay(attempt int, hint time.Duration) time.Duration {
	if hint > 0 {
		return hint
	}
	base := b.Base
	if base <= 0 {
		base = DefaultBaseDelay
	}
	max := b.Max
	if max <= 0 {
		max = DefaultMaxBackoff
	}
	if attempt < 1 {
		attempt = 1
	}
	// base*2^(attempt-1), capped at max, overflow-safe.
	return retryablehttp.DefaultBackoff(base, max, attempt-1, nil)
}

// ParseRetryAfter interprets a Retry-After header value. Only the
// delta-seconds form is honored; the HTTP-date form (and any garbage)
// returns zero so the caller falls back to exponential backoff.
func ParseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	seconds, err := strconv.ParseInt(header, 10, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// RetryAfterHint extracts the suggested delay from a response, if any.
func RetryAfterHint(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	return ParseRetryAfter(resp.Header.Get("Retry-After"))
}
