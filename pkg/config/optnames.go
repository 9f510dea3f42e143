package config

const (
	// Backoff policy knobs. These are only available via envvar
	// (RGET_BASE_DELAY, RGET_MAX_BACKOFF), not command line.
	OptBaseDelay  = "base-delay"
	OptMaxBackoff = "max-backoff"

	// Normal options with CLI arguments
	OptConnTimeout  = "connect-timeout"
	OptDecompress   = "decompress"
	OptForce        = "force"
	OptLoggingLevel = "log-level"
	OptMaxSize      = "max-size"
	OptNoFollow     = "no-follow"
	OptQuiet        = "quiet"
	OptResume       = "continue"
	OptResumeAlias  = "resume"
	OptRetries      = "retries"
	OptSkipSize     = "skip-size"
	OptTimeout      = "timeout"
	OptUserAgent    = "user-agent"
	OptVerbose      = "verbose"
)
