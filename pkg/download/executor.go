package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/rget/rget/pkg/extract"
	"github.com/rget/rget/pkg/logging"
)

const copyBufferSize = 128 * 1024

// Outcome is the result of exactly one transfer attempt.
type Outcome struct {
	// Err is nil on success. Its Kind decides retry eligibility.
	Err *Error

	// BytesWritten is how many body bytes reached the destination file
	// during this attempt.
	BytesWritten int64

	// RetryAfter carries the server's numeric Retry-After hint on a rate
	// limited outcome, zero otherwise.
	RetryAfter time.Duration
}

func (o Outcome) Success() bool {
	return o.Err == nil
}

// ProgressSink receives byte counts as they are written to disk.
type ProgressSink interface {
	Add(n int64)
}

// Executor performs single transfer attempts. It never retries and never
// deletes files; both policies belong to the Orchestrator.
type Executor struct {
	Client *http.Client

	// Progress, when set, is fed every chunk written to the destination.
	Progress ProgressSink
}

// Do issues one HTTP GET for opts.URL and streams the body to opts.Dest.
// offset > 0 requests a byte range and appends to the existing file;
// otherwise the destination is created or truncated. The body is streamed
// through a fixed-size buffer so memory stays bounded regardless of file
// size.
func (e *Executor) Do(ctx context.Context, opts Options, offset int64) Outcome {
	logger := logging.GetLogger()

	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return Outcome{Err: NewError(KindClientError, 0, err)}
	}
	resuming := opts.Resume && offset > 0
	if resuming {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return Outcome{Err: classifyTransportError(err)}
	}
	defer resp.Body.Close()

	if outcome, ok := classifyStatus(resp); !ok {
		return outcome
	}

	// A 200 to a ranged request means the server ignored the Range header
	// and is sending the whole body; appending it would corrupt the file.
	if resuming && resp.StatusCode == http.StatusOK {
		logger.Warn().
			Str("url", opts.URL).
			Int64("offset", offset).
			Msg("Server ignored range request, restarting from byte 0")
		offset = 0
		resuming = false
	}

	body := io.Reader(resp.Body)
	var guard *sizeGuard
	if opts.MaxFileSize > 0 {
		if offset >= opts.MaxFileSize {
			return Outcome{Err: NewError(KindSizeLimitExceeded, 0,
				fmt.Errorf("existing partial of %d bytes already at limit %d", offset, opts.MaxFileSize))}
		}
		guard = &sizeGuard{reader: body, remaining: opts.MaxFileSize - offset}
		body = guard
	}
	if opts.Decompress {
		body, err = extract.NewReader(body)
		if err != nil {
			return Outcome{Err: NewError(KindTransientNetwork, resp.StatusCode, err)}
		}
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if resuming {
		openFlags = os.O_WRONLY | os.O_APPEND
	}
	out, err := os.OpenFile(opts.Dest, openFlags, 0o644)
	if err != nil {
		return Outcome{Err: NewError(KindUnknown, 0, fmt.Errorf("opening destination: %w", err))}
	}
	defer out.Close()

	writer := &countingWriter{file: out, progress: e.Progress}
	_, copyErr := io.CopyBuffer(writer, body, make([]byte, copyBufferSize))
	if closeErr := out.Close(); copyErr == nil && closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		copyErr = closeErr
	}

	if copyErr != nil {
		if writer.err != nil {
			// Local write failure, not a network condition.
			return Outcome{
				Err:          NewError(KindUnknown, 0, fmt.Errorf("writing destination: %w", writer.err)),
				BytesWritten: writer.written,
			}
		}
		if guard != nil && errors.Is(copyErr, errSizeLimit) {
			return Outcome{
				Err: NewError(KindSizeLimitExceeded, 0,
					fmt.Errorf("transfer exceeded limit of %d bytes", opts.MaxFileSize)),
				BytesWritten: writer.written,
			}
		}
		return Outcome{Err: classifyTransportError(copyErr), BytesWritten: writer.written}
	}

	logger.Debug().
		Str("url", opts.URL).
		Int("status", resp.StatusCode).
		Int64("bytes", writer.written).
		Int64("offset", offset).
		Msg("Attempt complete")
	return Outcome{BytesWritten: writer.written}
}

// classifyStatus maps the response status to a failure outcome. ok is true
// when the response is a success and the body should be consumed.
func classifyStatus(resp *http.Response) (Outcome, bool) {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return Outcome{}, true
	case code == http.StatusTooManyRequests:
		return Outcome{
			Err:        ErrStatus(KindRateLimited, code),
			RetryAfter: RetryAfterHint(resp),
		}, false
	case code >= 500:
		return Outcome{Err: ErrStatus(KindServerError, code)}, false
	default:
		// Remaining 4xx mean the request itself is wrong; a 3xx lands
		// here only when redirect following is disabled and is equally
		// unfixable by retrying.
		return Outcome{Err: ErrStatus(KindClientError, code)}, false
	}
}

// classifyTransportError maps a connection-level failure to exactly one
// Kind. Timeouts (including TLS handshake timeouts) are plausibly
// transient; an unresolvable host or refused connection is not worth
// burning the retry budget on.
func classifyTransportError(err error) *Error {
	if errors.Is(err, context.Canceled) {
		return NewError(KindUnknown, 0, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewError(KindTimeout, 0, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewError(KindNetworkUnreachable, 0, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return NewError(KindNetworkUnreachable, 0, err)
	}
	return NewError(KindTransientNetwork, 0, err)
}

var errSizeLimit = errors.New("download: size limit exceeded")

// sizeGuard fails the stream as soon as received bytes would exceed the
// configured limit, so nothing past the limit is silently written.
type sizeGuard struct {
	reader    io.Reader
	remaining int64
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	// Allow reading one byte past the limit so an exactly-limit-sized
	// body still sees its EOF; the overflow byte itself is never
	// reported to the caller.
	if int64(len(p)) > g.remaining+1 {
		p = p[:g.remaining+1]
	}
	n, err := g.reader.Read(p)
	if over := int64(n) - g.remaining; over > 0 {
		allowed := int64(n) - over
		g.remaining = 0
		return int(allowed), errSizeLimit
	}
	g.remaining -= int64(n)
	return n, err
}

// countingWriter tracks bytes written and records the first write error so
// local disk failures can be told apart from network read failures.
type countingWriter struct {
	file     *os.File
	progress ProgressSink
	written  int64
	err      error
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.file.Write(p)
	w.written += int64(n)
	if w.progress != nil && n > 0 {
		w.progress.Add(int64(n))
	}
	if err != nil && w.err == nil {
		w.err = err
	}
	return n, err
}
