package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpjhorner/specdash/internal/version"
)

var versionVerbose bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the current version, build time, and git commit of specdash.`,
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "show build details")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	if !versionVerbose {
		fmt.Println(version.Info())
		return
	}
	fmt.Println(boldStyle.Render("specdash"))
	for _, line := range version.Details(time.Now()) {
		fmt.Println("  " + line)
	}
}
