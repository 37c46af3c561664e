package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/lpm"
	"github.com/aretw0/lpm/internal/cli"
	"github.com/spf13/cobra"
)

var declareCmd = &cobra.Command{
	Use:   "declare [bits]",
	Short: "Declare a path and print its TeX macros",
	Long: `Writes path-<name>-<key>.tex and .json into the cache and prints the
\gdef definitions that point at them.

The path is given either as an argument with --name, or as a JSON spec with
--json '{"bits": "0101", "name": "demo"}'.`,
	Args: cobra.MaximumNArgs(1),
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

		spec, _ := cmd.Flags().GetString("json")
		if spec != "" {
			macros, err := tk.DeclarePathJSON(cmd.Context(), spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), macros)
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("expected bits argument or --json spec")
		}
		name, _ := cmd.Flags().GetString("name")
		cacheID, _ := cmd.Flags().GetString("cache-id")
		res, err := tk.DeclarePath(cmd.Context(), args[0], name, cacheID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Macros())
		return nil
	},
}

var betweenCmd = &cobra.Command{
	Use:   "between [lower] [upper]",
	Short: "Compose the region between two paths and print its TeX macro",
	Long: `Writes between-<L>-<U>-<key>.tex with the closed boundary polygon of the
region between a lower and an upper path that share their endpoints.

Paths are given as arguments, or as a JSON spec with
--json '{"L": "0011", "U": "0101", "lname": "low", "uname": "high"}'.`,
	Args: cobra.RangeArgs(0, 2),
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

		spec, _ := cmd.Flags().GetString("json")
		if spec != "" {
			macros, err := tk.BetweenJSON(cmd.Context(), spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), macros)
			return nil
		}

		if len(args) != 2 {
			return fmt.Errorf("expected lower and upper arguments or --json spec")
		}
		lname, _ := cmd.Flags().GetString("lname")
		uname, _ := cmd.Flags().GetString("uname")
		res, err := tk.DeclareBetween(cmd.Context(), args[0], args[1], lname, uname)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Macros())
		return nil
	},
}

var dataCmd = &cobra.Command{
	Use:   "data [bits]",
	Short: "Print the coordinates and upmarks of a path as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data *lpm.PathData
			err  error
		)
		spec, _ := cmd.Flags().GetString("json")
		switch {
		case spec != "":
			data, err = lpm.PathDataJSON(spec)
		case len(args) == 1:
			data, err = lpm.ParsePathData(args[0])
		default:
			return fmt.Errorf("expected bits argument or --json spec")
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(data)
	},
}

func init() {
	rootCmd.AddCommand(declareCmd)
	rootCmd.AddCommand(betweenCmd)
	rootCmd.AddCommand(dataCmd)

	declareCmd.Flags().String("name", "path", "Path name used in macro names")
	declareCmd.Flags().String("cache-id", "", "Namespace mixed into the cache key")
	declareCmd.Flags().String("json", "", "JSON spec with bits, name and optional cache_id")

	betweenCmd.Flags().String("lname", "L", "Lower path name")
	betweenCmd.Flags().String("uname", "U", "Upper path name")
	betweenCmd.Flags().String("json", "", "JSON spec with L, U and optional lname, uname")

	dataCmd.Flags().String("json", "", `JSON spec with key "bits"`)
}
