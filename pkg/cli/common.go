package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rget/rget/pkg/logging"
	"github.com/rget/rget/pkg/sanitize"
)

const UsageTemplate = `
Usage:{{if .Runnable}}
{{if .HasAvailableFlags}}{{appendIfNotPresent .UseLine "[flags]"}}{{else}}{{.UseLine}}{{end}}{{end}}{{if .HasAvailableSubCommands}}
{{.CommandPath}} [command]{{end}}{{if gt .Aliases 0}}

Aliases:
{{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if .IsAvailableCommand}}
{{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
{{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

// CheckDestination sanitizes the destination's base name and rejects the
// result if it already exists, unless the user asked to overwrite it or to
// resume into it. The returned path is the one the download will open, so
// the existence check and the transfer always agree on the destination.
func CheckDestination(dest string, force, resume bool) (string, error) {
	dir, base := filepath.Split(dest)
	clean, changed := sanitize.Filename(base)
	if changed {
		logger := logging.GetLogger()
		logger.Warn().
			Str("requested", base).
			Str("sanitized", clean).
			Msg("Destination filename adjusted")
	}
	dest = filepath.Join(dir, clean)

	_, err := os.Stat(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return dest, nil
	}
	if force || resume {
		return dest, nil
	}
	return dest, fmt.Errorf("destination %s already exists (use --force to overwrite or --continue to resume)", dest)
}
