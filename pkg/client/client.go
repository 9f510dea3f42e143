package client

import (
	"net"
	"net/http"
	"time"

	"github.com/rget/rget/pkg/logging"
)

// Options configures the construction of the underlying http.Client.
type Options struct {
	// ConnTimeout bounds connection establishment. Zero means 5s.
	ConnTimeout time.Duration

	// UserAgent is injected into every outgoing request.
	UserAgent string

	// FollowRedirects chases 3xx responses when true; when false the
	// redirect response itself is returned to the caller untouched.
	FollowRedirects bool
}

// UserAgentTransport stamps the configured User-Agent onto every request
// before handing it to the wrapped RoundTripper.
type UserAgentTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.UserAgent)
	return t.Transport.RoundTrip(req)
}

// NewClient returns an http.Client with sane transport limits. Retry
// policy lives entirely in the download package; this client performs
// single attempts only.
func NewClient(opts Options) *http.Client {
	connTimeout := opts.ConnTimeout
	if connTimeout <= 0 {
		connTimeout = 5 * time.Second
	}
	baseTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	transport := &UserAgentTransport{Transport: baseTransport, UserAgent: opts.UserAgent}

	checkRedirect := logRedirectFunc
	if !opts.FollowRedirects {
		checkRedirect = refuseRedirectFunc
	}

	return &http.Client{
		Transport:     transport,
		CheckRedirect: checkRedirect,
	}
}

// logRedirectFunc follows redirects while tracing each hop.
func logRedirectFunc(req *http.Request, via []*http.Request) error {
	logger := logging.GetLogger()
	logger.Trace().
		Str("redirect_url", req.URL.String()).
		Str("url", via[0].URL.String()).
		Int("status", req.Response.StatusCode).
		Msg("Redirect")
	return nil
}

// refuseRedirectFunc hands the 3xx response back to the caller unfollowed.
func refuseRedirectFunc(req *http.Request, via []*http.Request) error {
	return http.ErrUseLastResponse
}
