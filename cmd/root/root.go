package root

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rget "github.com/rget/rget/pkg"
	"github.com/rget/rget/pkg/cli"
	"github.com/rget/rget/pkg/client"
	"github.com/rget/rget/pkg/config"
	"github.com/rget/rget/pkg/download"
	"github.com/rget/rget/pkg/version"
)

const rootLongDesc = `
rget

rget is a resilient file downloader built in Go. It fetches a single
HTTP(S) resource to a local path while tolerating transient network
failures, server errors and rate limiting.

Failed attempts are retried with exponential backoff, honoring any
Retry-After hint the server supplies. Interrupted transfers can be picked
up where they left off with --continue, which requests only the remaining
bytes via an HTTP range request. A size guard aborts transfers that grow
past the configured limit, and compressed responses can be unpacked on the
fly with --decompress.
`

func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rget [flags] <url> <dest>",
		Short: "rget",
		Long:  rootLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.PersistentStartupProcessFlags()
		},
		RunE:    runRootCMD,
		Args:    cobra.ExactArgs(2),
		Example: `  rget https://example.com/report.pdf report.pdf`,
	}
	cmd.SetUsageTemplate(cli.UsageTemplate)
	err := config.AddRootPersistentFlags(cmd)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return cmd
}

func runRootCMD(cmd *cobra.Command, args []string) error {
	// After we run through the PreRun functions we want to silence usage from being printed
	// on all errors
	cmd.SilenceUsage = true

	urlString := args[0]
	dest := args[1]

	log.Info().Str("url", urlString).
		Str("dest", dest).
		Int("retries", viper.GetInt(config.OptRetries)).
		Msg("Initiating")

	if viper.GetBool(config.OptDecompress) && viper.GetBool(config.OptResume) {
		return fmt.Errorf("--decompress cannot be combined with --continue: byte offsets are meaningless in a decompressed stream")
	}

	dest, err := cli.CheckDestination(dest, viper.GetBool(config.OptForce), viper.GetBool(config.OptResume))
	if err != nil {
		return err
	}

	return rootExecute(cmd.Context(), urlString, dest)
}

// rootExecute builds the download options from the bound configuration and
// runs the download, returning any/all errors to the caller.
func rootExecute(ctx context.Context, urlString, dest string) error {
	var maxFileSize int64
	if !viper.GetBool(config.OptSkipSize) {
		parsed, err := humanize.ParseBytes(viper.GetString(config.OptMaxSize))
		if err != nil {
			return fmt.Errorf("unable to parse max size: %w", err)
		}
		maxFileSize = int64(parsed)
	}

	userAgent := viper.GetString(config.OptUserAgent)
	if userAgent == "" {
		userAgent = fmt.Sprintf("rget/%s", version.GetVersion())
	}

	opts := download.Options{
		URL:             urlString,
		Dest:            dest,
		MaxAttempts:     viper.GetInt(config.OptRetries),
		Timeout:         viper.GetDuration(config.OptTimeout),
		UserAgent:       userAgent,
		Resume:          viper.GetBool(config.OptResume),
		FollowRedirects: !viper.GetBool(config.OptNoFollow),
		MaxFileSize:     maxFileSize,
		Decompress:      viper.GetBool(config.OptDecompress),
		Quiet:           viper.GetBool(config.OptQuiet),
		Backoff: download.Backoff{
			Base: viper.GetDuration(config.OptBaseDelay),
			Max:  viper.GetDuration(config.OptMaxBackoff),
		},
	}

	httpClient := client.NewClient(client.Options{
		ConnTimeout:     viper.GetDuration(config.OptConnTimeout),
		UserAgent:       userAgent,
		FollowRedirects: opts.FollowRedirects,
	})

	getter := rget.Getter{
		Executor: &download.Executor{Client: httpClient},
	}

	_, _, err := getter.DownloadFile(ctx, opts)
	return err
}
