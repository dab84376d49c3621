package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchgw/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of searchgw",
	// No config needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
