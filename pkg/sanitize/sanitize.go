// Package sanitize normalizes user-supplied destination names into safe
// filesystem path components.
package sanitize

import (
	"fmt"
	"strings"
	"time"
)

const (
	// maxNameBytes matches the common filesystem limit for a single path
	// component.
	maxNameBytes = 255

	// maxExtBytes is the longest trailing extension (dot included) worth
	// preserving when a name has to be truncated.
	maxExtBytes = 10
)

// Replaced within names: path delimiters, traversal sequences and
// characters that are reserved on at least one mainstream filesystem.
const reservedChars = `/\:*?"<>|`

// Filename returns a filesystem-safe rendition of name: reserved
// characters and ".." sequences become "_", surrounding whitespace and
// leading dots are stripped, and the result is capped at 255 bytes with a
// short trailing extension preserved. A name that sanitizes down to
// nothing becomes a timestamped placeholder. Idempotent. changed reports
// whether the output differs from the input so callers can warn the user;
// it is a side channel, never an error.
func Filename(name string) (clean string, changed bool) {
	clean = name
	// Each pass only removes or replaces bytes, so this converges; a
	// second pass matters when e.g. truncation exposes a new trailing
	// dot next to a preserved extension.
	for {
		next := sanitizeOnce(clean)
		if next == clean {
			break
		}
		clean = next
	}

	if clean == "" {
		clean = fmt.Sprintf("download-%d", time.Now().Unix())
	}

	return clean, clean != name
}

func sanitizeOnce(name string) string {
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", "_")
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedChars, r) {
			return '_'
		}
		return r
	}, name)

	name = strings.TrimSpace(name)
	// Leading dots make hidden files; strip them rather than guess intent.
	name = strings.TrimLeft(name, ".")

	if len(name) > maxNameBytes {
		name = truncate(name)
	}
	return name
}

// truncate caps the name at maxNameBytes, keeping a short trailing
// extension intact when one exists.
func truncate(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		ext := name[idx:]
		if len(ext) <= maxExtBytes {
			return name[:maxNameBytes-len(ext)] + ext
		}
	}
	return name[:maxNameBytes]
}
