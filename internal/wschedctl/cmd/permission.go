package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
	"github.com/wrale/wrale-scheduler/internal/wschedctl/client"
	"github.com/wrale/wrale-scheduler/internal/wschedctl/util"
)

// newPermissionCmd creates the permission management command
func newPermissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "permission",
		Aliases: []string{"permissions", "perm"},
		Short:   "Manage schedule permissions",
		Long: `The permission command manages grants that let users schedule shows on
a device during given windows. Managing grants needs the schedule permission
capability on the device.`,
	}

	cmd.AddCommand(
		newPermissionListCmd(),
		newPermissionGetCmd(),
		newPermissionSaveCmd(),
		newPermissionDeleteCmd(),
		newLastDeviceCmd(client.ScopePermissions),
		newUseDeviceCmd(client.ScopePermissions),
	)
	return cmd
}

func newPermissionListCmd() *cobra.Command {
	var (
		window windowFlags
		user   int64
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List permission occurrences on a device",
		Example: `  # Every grant on device 3 this week
  wschedctl permission list --device=3

  # One user's grants
  wschedctl permission list --device=3 --user=12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient()
			if err != nil {
				return err
			}
			w, err := window.window(cmd, c, client.ScopePermissions)
			if err != nil {
				return err
			}
			w.UserID = user

			occurrences, err := c.ListPermissions(cmd.Context(), w)
			if err != nil {
				return fmt.Errorf("error listing permissions: %w", err)
			}

			if output == "json" {
				return util.PrintJSON(cmd.OutOrStdout(), occurrences)
			}
			return printOccurrences(cmd.OutOrStdout(), occurrences, true)
		},
	}

	window.register(cmd)
	cmd.Flags().Int64Var(&user, "user", 0, "Only list this user's grants")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	return cmd
}

func newPermissionGetCmd() *cobra.Command {
	var recurring bool

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a permission grant",
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

			permission, err := c.GetPermission(cmd.Context(), id, recurring)
			if err != nil {
				return fmt.Errorf("error getting permission: %w", err)
			}
			return util.PrintJSON(cmd.OutOrStdout(), permission)
		},
	}

	cmd.Flags().BoolVar(&recurring, "recurring", false, "ID is a recurring grant")
	return cmd
}

func newPermissionSaveCmd() *cobra.Command {
	var (
		timing      timingFlags
		user        int64
		description string
	)

	cmd := &cobra.Command{
		Use:   "save [ID]",
		Short: "Grant a user scheduling rights, or edit a grant when ID is given",
		Example: `  # Let user 12 schedule on device 3 every weekday afternoon in March
  wschedctl permission save --user=12 --device=3 --mode=rrule \
    --x-data="FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR" --start="2024-03-04 13:00" \
    --stop=2024-03-29 --duration=4h --description="afternoon block"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient()
			if err != nil {
				return err
			}
			r, err := timing.resolve(cmd, c, client.ScopePermissions)
			if err != nil {
				return err
			}

			req := v1alpha1.SavePermissionRequest{
				EditRecurring:   timing.editRecurring,
				UserID:          fmt.Sprint(user),
				DeviceID:        r.device,
				Mode:            timing.mode,
				XData:           timing.xData,
				Description:     description,
				Start:           r.start,
				Stop:            r.stop,
				DurationDays:    r.days,
				DurationHours:   r.hours,
				DurationMinutes: r.minutes,
				DurationSeconds: r.seconds,
			}
			if len(args) == 1 {
				req.ID = args[0]
			}

			permission, msg, err := c.SavePermission(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, recurring %v)\n", msg, permission.ID, permission.Recurring)
			return nil
		},
	}

	timing.register(cmd)
	cmd.Flags().Int64Var(&user, "user", 0, "Grantee user ID (required)")
	cmd.Flags().StringVar(&description, "description", "", "Description of the grant")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newPermissionDeleteCmd() *cobra.Command {
	var recurring bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Revoke a permission grant",
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

			if err := c.DeletePermission(cmd.Context(), id, recurring); err != nil {
				return fmt.Errorf("error deleting permission: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Permission %d deleted\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&recurring, "recurring", false, "ID is a recurring grant")
	return cmd
}
