package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-scheduler/internal/wschedctl/util"
)

func newDeviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "device",
		Aliases: []string{"devices"},
		Short:   "Inspect playback devices",
	}
	cmd.AddCommand(newDeviceListCmd())
	return cmd
}

func newDeviceListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient()
			if err != nil {
				return err
			}
			devices, err := c.ListDevices(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing devices: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), devices)
			}
			tw := util.NewTabWriter(cmd.OutOrStdout())
			defer tw.Flush()
			fmt.Fprintf(tw, "ID\tNAME\tSITE\tZONE\tPOSITION\n")
			for _, d := range devices {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.SiteID, d.Zone, d.Position)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	return cmd
}
