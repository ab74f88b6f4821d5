package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "workbench",
		Short: "Manage CDN distributions and object metadata from the browser",
		Long: `workbench serves a local web dialog for listing, creating, updating and
deleting CDN distributions and editing object metadata on a storage service.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(versionLine() + "\n")
	root.PersistentFlags().String("config", "", "Path to config file (YAML)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(newServeCmd(), newListCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of workbench",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionLine())
		},
	}
}

func versionLine() string {
	return fmt.Sprintf("workbench %s (commit: %s, built: %s)", version, commit, date)
}
