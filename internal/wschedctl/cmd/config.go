package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wrale/wrale-scheduler/internal/wschedctl/config"
	"github.com/wrale/wrale-scheduler/internal/wschedctl/util"
)

// newConfigCmd creates the config command that manages CLI contexts
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `The config command manages wschedctl contexts. Each context names a
server and the token used to reach it, so switching between environments is a
single use-context away.`,
	}

	cmd.AddCommand(
		newConfigGetContextCmd(),
		newConfigSetContextCmd(),
		newConfigDeleteContextCmd(),
		newConfigUseContextCmd(),
		newConfigViewCmd(),
	)

	return cmd
}

func maskToken(token string) string {
	if len(token) <= 6 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..."
}

func newConfigGetContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-context [name]",
		Short: "Display one or many contexts",
		Example: `  # List all contexts
  wschedctl config get-context

  # Show details for a specific context
  wschedctl config get-context production`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				tw := util.NewTabWriter(out)
				defer tw.Flush()
				fmt.Fprintf(tw, "CURRENT\tNAME\tSERVER\n")
				for _, name := range cfg.Names() {
					current := ""
					if name == cfg.CurrentContext {
						current = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", current, name, cfg.Contexts[name].Server)
				}
				return nil
			}

			name := args[0]
			ctx, ok := cfg.Contexts[name]
			if !ok {
				return fmt.Errorf("context %q not found", name)
			}

			fmt.Fprintf(out, "Name: %s\n", name)
			fmt.Fprintf(out, "Server: %s\n", ctx.Server)
			fmt.Fprintf(out, "Insecure Skip Verify: %v\n", ctx.InsecureSkipVerify)
			if ctx.Token != "" {
				fmt.Fprintf(out, "Token: %s\n", maskToken(ctx.Token))
			}
			return nil
		},
	}
}

func newConfigSetContextCmd() *cobra.Command {
	var (
		server          string
		token           string
		insecureSkipTLS bool
	)

	cmd := &cobra.Command{
		Use:   "set-context NAME",
		Short: "Create or update a context",
		Example: `  # Create a context for a local server
  wschedctl config set-context dev --server=http://localhost:8080 --token=$(wschedd -issue-token-for 1)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			ctx := &config.Context{Server: server, Token: token, InsecureSkipVerify: insecureSkipTLS}
			if existing, ok := cfg.Contexts[name]; ok {
				// Flags left unset keep the existing values
				if server == "" {
					ctx.Server = existing.Server
				}
				if token == "" {
					ctx.Token = existing.Token
				}
				if !cmd.Flags().Changed("insecure-skip-tls") {
					ctx.InsecureSkipVerify = existing.InsecureSkipVerify
				}
			}
			if ctx.Server == "" {
				return fmt.Errorf("server URL is required")
			}

			cfg.AddContext(name, ctx)
			if cfg.CurrentContext == "" {
				cfg.CurrentContext = name
			}

			if err := cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q updated\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Server URL")
	cmd.Flags().StringVar(&token, "token", "", "Authentication token")
	cmd.Flags().BoolVar(&insecureSkipTLS, "insecure-skip-tls", false, "Skip TLS certificate verification")

	return cmd
}

func newConfigDeleteContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Delete a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := cfg.RemoveContext(name); err != nil {
				return fmt.Errorf("error removing context: %w", err)
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted\n", name)
			return nil
		},
	}
}

func newConfigUseContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-context NAME",
		Short: "Switch to a different context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := cfg.SetCurrentContext(name); err != nil {
				return fmt.Errorf("error setting current context: %w", err)
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q\n", name)
			return nil
		},
	}
}

func newConfigViewCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Display the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			type viewContext struct {
				Server             string `yaml:"server" json:"server"`
				Token              string `yaml:"token,omitempty" json:"token,omitempty"`
				InsecureSkipVerify bool   `yaml:"insecure-skip-verify" json:"insecureSkipVerify"`
			}
			view := struct {
				CurrentContext string                 `yaml:"current-context" json:"currentContext"`
				Contexts       map[string]viewContext `yaml:"contexts" json:"contexts"`
			}{CurrentContext: cfg.CurrentContext, Contexts: map[string]viewContext{}}
			for name, ctx := range cfg.Contexts {
				token := ""
				if ctx.Token != "" {
					token = maskToken(ctx.Token)
				}
				view.Contexts[name] = viewContext{Server: ctx.Server, Token: token, InsecureSkipVerify: ctx.InsecureSkipVerify}
			}

			switch strings.ToLower(outputFormat) {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(view)
			case "json":
				return util.PrintJSON(out, view)
			default:
				fmt.Fprintf(out, "Config: %s\n", cfg.Path())
				fmt.Fprintf(out, "Current Context: %s\n\n", cfg.CurrentContext)
				fmt.Fprintf(out, "Contexts:\n")
				for _, name := range cfg.Names() {
					ctx := view.Contexts[name]
					fmt.Fprintf(out, "- %s:\n", name)
					fmt.Fprintf(out, "    Server: %s\n", ctx.Server)
					fmt.Fprintf(out, "    InsecureSkipVerify: %v\n", ctx.InsecureSkipVerify)
					if ctx.Token != "" {
						fmt.Fprintf(out, "    Token: %s\n", ctx.Token)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, yaml, json)")

	return cmd
}
