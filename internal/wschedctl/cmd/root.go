// Package cmd implements the Wrale Scheduler CLI commands
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-scheduler/internal/wschedctl/client"
	"github.com/wrale/wrale-scheduler/internal/wschedctl/config"
	"github.com/wrale/wrale-scheduler/internal/wschedctl/util"
)

var (
	cfgFile   string
	cfg       *config.Config
	overrides util.Overrides
	timezone  string
	debug     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wschedctl",
		Short: "Wrale Scheduler control tool",
		Long: `wschedctl manages what plays on Wrale playback devices: scheduled shows
and the permissions that let users schedule them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wschedctl/config.yaml)")
	cmd.PersistentFlags().StringVar(&overrides.Server, "server", "", "API server address")
	cmd.PersistentFlags().StringVar(&overrides.Token, "token", "", "Authentication token")
	cmd.PersistentFlags().StringVar(&timezone, "timezone", "Local", "Time zone for reading and printing times")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Print extra detail")

	cmd.AddCommand(
		newConfigCmd(),
		newShowCmd(),
		newPermissionCmd(),
		newDeviceCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getClient() (*client.Client, error) {
	return util.GetClient(cfg, overrides)
}

func location() (*time.Location, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}
