package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
	"github.com/wrale/wrale-scheduler/internal/wschedctl/client"
	"github.com/wrale/wrale-scheduler/internal/wschedctl/util"
)

// newShowCmd creates the show management command
func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"shows"},
		Short:   "Manage scheduled shows",
		Long: `The show command manages content scheduled on devices. A show plays a
media item, a playlist or the line input, once or on a recurrence, and may not
overlap another show on the same device.`,
	}

	cmd.AddCommand(
		newShowListCmd(),
		newShowGetCmd(),
		newShowSaveCmd(),
		newShowDeleteCmd(),
		newLastDeviceCmd(client.ScopeShows),
		newUseDeviceCmd(client.ScopeShows),
	)
	return cmd
}

func newShowListCmd() *cobra.Command {
	var (
		window windowFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List show occurrences on a device",
		Example: `  # Shows on device 3 over the next week
  wschedctl show list --device=3

  # A specific day as JSON
  wschedctl show list --device=3 --start="2024-03-04" --days=1 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient()
			if err != nil {
				return err
			}
			w, err := window.window(cmd, c, client.ScopeShows)
			if err != nil {
				return err
			}

			occurrences, err := c.ListShows(cmd.Context(), w)
			if err != nil {
				return fmt.Errorf("error listing shows: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), occurrences)
			}
			return printOccurrences(cmd.OutOrStdout(), occurrences, false)
		},
	}

	window.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	return cmd
}

func newShowGetCmd() *cobra.Command {
	var recurring bool

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a scheduled show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := getClient()
			if err != nil {
				return err
			}

			show, err := c.GetShow(cmd.Context(), id, recurring)
			if err != nil {
				return fmt.Errorf("error getting show: %w", err)
			}
			return util.PrintJSON(cmd.OutOrStdout(), show)
		},
	}

	cmd.Flags().BoolVar(&recurring, "recurring", false, "ID is a recurring show")
	return cmd
}

func newShowSaveCmd() *cobra.Command {
	var (
		timing   timingFlags
		itemType string
		itemID   int64
	)

	cmd := &cobra.Command{
		Use:   "save [ID]",
		Short: "Schedule a show, or edit one when ID is given",
		Example: `  # Play media 42 every Monday morning in March
  wschedctl show save --device=3 --mode=weekly --start="2024-03-04 09:00" \
    --stop=2024-03-31 --duration=1h --item-type=media --item-id=42

  # Move a one-off show to another device
  wschedctl show save 17 --device=4 --start="2024-03-05 18:00" --duration=30m \
    --item-type=linein`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient()
			if err != nil {
				return err
			}
			r, err := timing.resolve(cmd, c, client.ScopeShows)
			if err != nil {
				return err
			}

			req := v1alpha1.SaveShowRequest{
				EditRecurring:   timing.editRecurring,
				DeviceID:        r.device,
				Mode:            timing.mode,
				XData:           timing.xData,
				Start:           r.start,
				Stop:            r.stop,
				DurationDays:    r.days,
				DurationHours:   r.hours,
				DurationMinutes: r.minutes,
				DurationSeconds: r.seconds,
				ItemType:        itemType,
			}
			if len(args) == 1 {
				req.ID = args[0]
			}
			if itemID != 0 {
				req.ItemID = strconv.FormatInt(itemID, 10)
			}

			show, msg, err := c.SaveShow(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, recurring %v)\n", msg, show.ID, show.Recurring)
			return nil
		},
	}

	timing.register(cmd)
	cmd.Flags().StringVar(&itemType, "item-type", "media", "Item type (media, playlist, linein)")
	cmd.Flags().Int64Var(&itemID, "item-id", 0, "Media or playlist ID")
	return cmd
}

func newShowDeleteCmd() *cobra.Command {
	var recurring bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a scheduled show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := getClient()
			if err != nil {
				return err
			}

			if err := c.DeleteShow(cmd.Context(), id, recurring); err != nil {
				return fmt.Errorf("error deleting show: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Show %d deleted\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&recurring, "recurring", false, "ID is a recurring show")
	return cmd
}

func newLastDeviceCmd(scope client.Scope) *cobra.Command {
	return &cobra.Command{
		Use:   "last-device",
		Short: "Print the device last used for " + string(scope),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient()
			if err != nil {
				return err
			}
			device, err := c.LastDevice(cmd.Context(), scope)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), device)
			return nil
		},
	}
}

func newUseDeviceCmd(scope client.Scope) *cobra.Command {
	return &cobra.Command{
		Use:   "use-device DEVICE",
		Short: "Remember the device used for " + string(scope),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			device, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := getClient()
			if err != nil {
				return err
			}
			if err := c.SetLastDevice(cmd.Context(), scope, device); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Using device %d for %s\n", device, scope)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

// printOccurrences writes occurrences as a table
func printOccurrences(out io.Writer, occurrences []v1alpha1.Occurrence, permissions bool) error {
	loc, err := location()
	if err != nil {
		return err
	}

	tw := util.NewTabWriter(out)
	defer tw.Flush()

	last := "ITEM"
	if permissions {
		last = "DESCRIPTION"
	}
	fmt.Fprintf(tw, "ID\tSTART\tEND\tDURATION\tMODE\tUSER\t%s\n", last)

	for _, o := range occurrences {
		id := strconv.FormatInt(o.ID, 10)
		if o.Recurring {
			id += "r"
		}
		detail := o.Description
		if !permissions {
			detail = o.ItemType
			if o.ItemID != 0 {
				detail = fmt.Sprintf("%s/%d", o.ItemType, o.ItemID)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			id,
			util.FormatUnix(o.Start, loc),
			util.FormatUnix(o.Start+o.Duration, loc),
			util.FormatSeconds(o.Duration),
			o.Mode,
			o.UserID,
			detail)
	}
	return nil
}
