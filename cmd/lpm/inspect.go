package main

import (
	"fmt"

	"github.com/aretw0/lpm/internal/presentation/tui"
	"github.com/aretw0/lpm/pkg/domain"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [bits]",
	Short: "Describe a path and draw it in the terminal",
	Long: `Prints the derived geometry of a path (upmarks, direction changes, inside
corners, row extents) with a drawing. With --against, also draws the region
between the path (lower) and the given upper path. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		against, _ := cmd.Flags().GetString("against")
		raw, _ := cmd.Flags().GetBool("raw")
		style, _ := cmd.Flags().GetString("style")

		lp, err := domain.ParsePath(args[0])
		if err != nil {
			return err
		}
		md := tui.InspectMarkdown(name, lp)

		if against != "" {
			upper, err := domain.ParsePath(against)
			if err != nil {
				return fmt.Errorf("upper path: %w", err)
			}
			poly, err := domain.Between(lp, upper)
			if err != nil {
				return err
			}
			md += "\n" + tui.RegionMarkdown(name, "upper", poly)
		}

		if raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		render, err := tui.NewRenderer(style)
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("name", "path", "Display name of the path")
	inspectCmd.Flags().String("against", "", "Upper path to compose the region with")
	inspectCmd.Flags().Bool("raw", false, "Print markdown without rendering")
	inspectCmd.Flags().String("style", "", "Glamour style (dark, light, notty); default follows the terminal")
}
