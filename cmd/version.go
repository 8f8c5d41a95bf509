package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/ginjaninja78/healthkit-to-csv/cmd.Version=...".
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// versionCmd prints build information. It needs no DATA directory, so the
// root's config hook is replaced with a no-op.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hkconvert version",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionLine())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionLine renders e.g. "hkconvert dev (built unknown, go1.24.11 linux/amd64)".
func versionLine() string {
	return fmt.Sprintf("hkconvert %s (built %s, %s %s/%s)",
		Version, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
