package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-scheduler/internal/wschedctl/client"
	"github.com/wrale/wrale-scheduler/internal/wschedctl/util"
)

// timingFlags are the schedule definition flags shared by shows and
// permissions
type timingFlags struct {
	device        int64
	mode          string
	xData         string
	start         string
	stop          string
	duration      time.Duration
	editRecurring bool
}

func (f *timingFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.device, "device", 0, "Device ID (default is the last used device)")
	cmd.Flags().StringVar(&f.mode, "mode", "once", "Recurrence mode (once, daily, weekly, monthly, xdays, xweeks, xmonths, rrule)")
	cmd.Flags().StringVar(&f.xData, "x-data", "", "Mode parameter: the interval for x* modes or an RRULE")
	cmd.Flags().StringVar(&f.start, "start", "", "First start time (required)")
	cmd.Flags().StringVar(&f.stop, "stop", "", "Last day a recurring entry may start")
	cmd.Flags().DurationVar(&f.duration, "duration", 0, "Length of each occurrence, e.g. 90m or 2h (required)")
	cmd.Flags().BoolVar(&f.editRecurring, "edit-recurring", false, "The edited ID is a recurring entry")

	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("duration")
}

// resolved holds flag values converted to the API's string fields
type resolved struct {
	device                        string
	start, stop                   string
	days, hours, minutes, seconds string
}

func (f *timingFlags) resolve(cmd *cobra.Command, c *client.Client, scope client.Scope) (resolved, error) {
	loc, err := location()
	if err != nil {
		return resolved{}, err
	}

	var r resolved
	device, err := deviceOrLast(cmd, c, scope, f.device)
	if err != nil {
		return r, err
	}
	r.device = strconv.FormatInt(device, 10)

	if r.start, err = util.UnixString(f.start, loc); err != nil {
		return r, err
	}
	if r.stop, err = util.UnixString(f.stop, loc); err != nil {
		return r, err
	}
	r.days, r.hours, r.minutes, r.seconds = util.DurationParts(f.duration)
	return r, nil
}

// windowFlags select a listing window
type windowFlags struct {
	device int64
	start  string
	end    string
	days   int
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.device, "device", 0, "Device ID (default is the last used device)")
	cmd.Flags().StringVar(&f.start, "start", "", "Window start (default is now)")
	cmd.Flags().StringVar(&f.end, "end", "", "Window end (default is start plus --days)")
	cmd.Flags().IntVar(&f.days, "days", 7, "Window length in days when --end is not given")
}

func (f *windowFlags) window(cmd *cobra.Command, c *client.Client, scope client.Scope) (client.Window, error) {
	loc, err := location()
	if err != nil {
		return client.Window{}, err
	}

	w := client.Window{Start: time.Now()}
	if f.start != "" {
		if w.Start, err = util.ParseTime(f.start, loc); err != nil {
			return w, err
		}
	}
	w.End = w.Start.AddDate(0, 0, f.days)
	if f.end != "" {
		if w.End, err = util.ParseTime(f.end, loc); err != nil {
			return w, err
		}
	}
	if !w.End.After(w.Start) {
		return w, fmt.Errorf("the window end must be after its start")
	}

	w.Device, err = deviceOrLast(cmd, c, scope, f.device)
	return w, err
}

// deviceOrLast returns device, falling back to the remembered device
func deviceOrLast(cmd *cobra.Command, c *client.Client, scope client.Scope, device int64) (int64, error) {
	if device != 0 {
		return device, nil
	}
	last, err := c.LastDevice(cmd.Context(), scope)
	if err != nil {
		return 0, fmt.Errorf("no --device given and no last device remembered: %w", err)
	}
	return last, nil
}
