package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "microblog",
	Short:         "Microblog CLI",
	Long:          "Command line interface for the Microblog API: read feeds, post, follow users and run database maintenance.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
