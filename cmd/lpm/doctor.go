package main

import (
	"errors"
	"os"

	"github.com/aretw0/lpm/internal/doctor"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errChecksFailed = errors.New("some doctor checks failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the TeX toolchain and cache directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		noColor, _ := cmd.Flags().GetBool("no-color")
		color := !noColor && term.IsTerminal(int(os.Stdout.Fd()))

		d := doctor.New(cmd.OutOrStdout(), doctor.WithColor(color), doctor.WithCacheDir(cfg.CacheDir))
		if !d.Run(cmd.Context()) {
			return errChecksFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().Bool("no-color", false, "Disable colored output")
}
