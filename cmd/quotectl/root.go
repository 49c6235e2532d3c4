package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/nuvme-configurator/internal/catalog"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Inspect the service catalog and price selections",
		Long: `quotectl works against the built-in catalog without a running API.

Examples:
  quotectl missions
  quotectl modules --mission modernization
  quotectl price --mission modernization --select cicd:qty=5 --select kubernetes:qty=3 --discount 10
  quotectl hash-pin 2468`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMissionsCmd(), newModulesCmd(), newPlansCmd(), newPriceCmd(), newHashPINCmd())
	return root
}

func newMissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missions",
		Short: "List missions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalog.Default()
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME")
			for _, m := range c.Missions() {
				fmt.Fprintf(tw, "%s\t%s\n", m.ID, m.Name)
			}
			return tw.Flush()
		},
	}
}

func newModulesCmd() *cobra.Command {
	var mission string
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List modules, optionally for one mission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalog.Default()
			if err != nil {
				return err
			}
			modules := c.Modules()
			if mission != "" {
				if modules, err = c.ModulesForMission(catalog.MissionID(mission)); err != nil {
					return err
				}
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tPRICING\tBASE")
			for _, m := range modules {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Shape, m.BaseCost.Format())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&mission, "mission", "m", "", "mission id")
	return cmd
}

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List support plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalog.Default()
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tSETUP\tMONTHLY\tINCLUDED")
			for _, p := range c.Plans() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.SetupPrice.Format(), p.MonthlyPrice.Format(), p.IncludedModules)
			}
			return tw.Flush()
		},
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
