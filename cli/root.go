package cli

import (
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agentfs",
		Short:         "Sandboxed filesystem tools for AI agents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	root.PersistentFlags().String("root", "", "Primary sandbox root directory")
	root.PersistentFlags().StringSlice("additional-root", nil, "Additional sandbox root directories")
	root.PersistentFlags().StringSlice("allowed-prefix", nil, "Allowed canonical path prefixes")
	root.PersistentFlags().String("platform", "", "Path platform semantics (posix or windows)")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error, disabled)")
	root.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	root.AddCommand(
		ResolveCmd(),
		CatCmd(),
		LsCmd(),
		WriteCmd(),
		RmCmd(),
	)

	return root
}
