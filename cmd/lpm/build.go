package main

import (
	"context"

	"github.com/aretw0/lpm"
	"github.com/aretw0/lpm/internal/cli"
	"github.com/aretw0/lpm/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [manifest]",
	Short: "Declare every path and region of a manifest",
	Long: `Reads a YAML or JSON manifest of paths and regions, writes their artifacts
and prints (or writes with --out) the collected macro definitions.
With --watch, rebuilds whenever the manifest changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		tk, closeFn, err := cli.NewToolkit(cfg, logger, nil)
		if err != nil {
			return err
		}
		defer closeFn()

		out, _ := cmd.Flags().GetString("out")
		watch, _ := cmd.Flags().GetBool("watch")

		if watch {
			tui.PrintBanner(cmd.OutOrStdout(), lpm.Version)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunBuild(sigCtx, tk, cli.BuildOptions{
			ManifestPath: args[0],
			OutPath:      out,
			Watch:        watch,
			Out:          cmd.OutOrStdout(),
		}, logger)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringP("out", "o", "", "Write macros to this file instead of stdout")
	buildCmd.Flags().BoolP("watch", "w", false, "Rebuild on manifest changes")
}
