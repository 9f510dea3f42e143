package download

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// blockedSchemes are protocol markers we refuse outright wherever they
// appear in the raw string, guarding against scheme-confusion tricks like
// "https://host/file:// ..." smuggled through naive prefix checks.
var blockedSchemes = []string{"file://", "ftp://", "sftp://", "gopher://"}

// ValidateURL rejects anything that is not plain http(s) before any network
// I/O happens.
func ValidateURL(raw string) (*url.URL, error) {
	for _, marker := range blockedSchemes {
		if strings.Contains(raw, marker) {
			return nil, NewError(KindUnsupportedProtocol, 0, fmt.Errorf("url contains %q", marker))
		}
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return nil, NewError(KindInvalidScheme, 0, fmt.Errorf("url must start with http:// or https://, got %q", raw))
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, NewError(KindInvalidScheme, 0, err)
	}
	if parsed.Host == "" {
		return nil, NewError(KindInvalidScheme, 0, fmt.Errorf("url %q has no host", raw))
	}
	return parsed, nil
}

// IsPrivateHost reports whether host points at loopback or RFC1918 space.
// Informational only; callers warn, they do not block.
func IsPrivateHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate()
}
