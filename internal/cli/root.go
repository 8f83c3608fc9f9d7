package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "grapple",
	Short:   "A terminal HTTP client built on a composable request library",
	Version: version,
	Long: `Grapple is a terminal HTTP client built on a reusable convenience
library: persisted client profiles, per-call overrides, authentication
header injection, structured query/body encoding, and typed errors for
non-2xx responses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is provided, print help
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(postCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(formCmd)
}
