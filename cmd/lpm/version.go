package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/lpm"
	"github.com/aretw0/lpm/internal/emitter"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lpm",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lpm version %s (artifact format %s)\n", strings.TrimSpace(lpm.Version), emitter.FormatVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
