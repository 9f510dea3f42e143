package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resume backs both --continue and its --resume alias, the way wget and
// curl each spell this flag.
var resume bool

func AddRootPersistentFlags(cmd *cobra.Command) error {
	// Persistent Flags (applies to all commands/subcommands)
	cmd.PersistentFlags().IntP(OptRetries, "r", 3, "Maximum number of download attempts")
	cmd.PersistentFlags().DurationP(OptTimeout, "t", 30*time.Second, "Per-attempt network timeout, format is <number><unit>, e.g. 30s")
	cmd.PersistentFlags().Duration(OptConnTimeout, 5*time.Second, "Timeout for establishing a connection")
	cmd.PersistentFlags().BoolVarP(&resume, OptResume, "c", false, "Resume a partial download via byte-range requests")
	cmd.PersistentFlags().BoolVar(&resume, OptResumeAlias, false, "Resume a partial download via byte-range requests")
	cmd.PersistentFlags().Bool(OptNoFollow, false, "Do not follow HTTP redirects")
	cmd.PersistentFlags().String(OptMaxSize, "5GiB", "Abort transfers larger than this (e.g. 500MB)")
	cmd.PersistentFlags().Bool(OptSkipSize, false, "Disable the maximum file size guard")
	cmd.PersistentFlags().BoolP(OptDecompress, "x", false, "Decompress the response body while downloading")
	cmd.PersistentFlags().BoolP(OptForce, "f", false, "Force download, overwriting existing file")
	cmd.PersistentFlags().String(OptUserAgent, "", "User-Agent header to send (default rget/<version>)")
	cmd.PersistentFlags().BoolP(OptQuiet, "q", false, "Suppress progress output")
	cmd.PersistentFlags().BoolP(OptVerbose, "v", false, "Verbose mode (equivalent to --log-level debug)")
	cmd.PersistentFlags().String(OptLoggingLevel, "info", "Log level (trace, debug, info, warn, error)")

	viper.SetEnvPrefix("RGET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Envvar-only backoff policy defaults
	viper.SetDefault(OptBaseDelay, time.Second)
	viper.SetDefault(OptMaxBackoff, 60*time.Second)

	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.RegisterAlias(OptResumeAlias, OptResume)

	if err := cmd.PersistentFlags().MarkHidden(OptResumeAlias); err != nil {
		return fmt.Errorf("failed to hide flag %s: %w", OptResumeAlias, err)
	}

	return nil
}

func PersistentStartupProcessFlags() error {
	if viper.GetBool(OptVerbose) {
		viper.Set(OptLoggingLevel, "debug")
	} else if viper.GetBool(OptQuiet) {
		viper.Set(OptLoggingLevel, "error")
	}
	setLogLevel(viper.GetString(OptLoggingLevel))
	return nil
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
