package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:          "social",
	Short:        "Social auth CLI",
	Long:         "Command line client for the social auth API: sign up, log in, log out and show the current profile.",
	SilenceUsage: true,
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
