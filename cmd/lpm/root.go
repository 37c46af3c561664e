package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/lpm/internal/cli"
	"github.com/aretw0/lpm/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lpm",
	Short: "lpm renders lattice paths and the regions between them for TeX",
	Long: `lpm turns bit-strings of unit steps ('0' = east, '1' = north) into TeX macro
files and JSON manifests, and composes the polygon between two paths that share
their endpoints. Artifacts are content-addressed and written into a fenced cache.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: lpm.yaml, lpm.yml or lpm.json if present)")
	rootCmd.PersistentFlags().String("cache-dir", "", "Cache directory for the file backend")
	rootCmd.PersistentFlags().String("backend", "", "Artifact backend: file, redis or memory")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// setup resolves configuration and logger from the persistent flags.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.ConfigPath, _ = flags.GetString("config")
	opts.CacheDir, _ = flags.GetString("cache-dir")
	opts.Backend, _ = flags.GetString("backend")
	opts.Debug, _ = flags.GetBool("debug")

	cfg, err := cli.LoadConfig(opts)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
