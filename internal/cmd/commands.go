package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/configtree"
)

// newGetCmd creates the get command.
func newGetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored at a key",
		Long: `Print the value stored at a key, read as --type.

Examples:
  configtree get server.host
  configtree get --type uint32 server.port
  configtree get --enforce --masked api_token`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			return app.Session(func(cfg *configtree.Config) error {
				text, err := readText(cfg, app.Kind, args[0], app.Masked)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.Out, text)
				return nil
			})
		},
	}
}

// newSetCmd creates the set command.
func newSetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Store a value at a key",
		Long: `Store a value at a key as --type, replacing any previous value.

With --masked and no value argument the value is prompted for without echo,
or read as one line from stdin when stdin is not a terminal.

Examples:
  configtree set server.host localhost
  configtree set --type bool debug true
  configtree set --masked api_token`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			var value string
			switch {
			case len(args) == 2:
				value = args[1]
			case app.Masked:
				value, err = app.ReadSecret(fmt.Sprintf("Value for %s: ", args[0]))
				if err != nil {
					return err
				}
			default:
				return errors.New("value required (or use --masked to be prompted)")
			}

			return app.Session(func(cfg *configtree.Config) error {
				return writeText(cfg, app.Kind, args[0], value, app.Masked)
			})
		},
	}
}

// newHasCmd creates the has command.
func newHasCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "has <key>",
		Short: "Report whether a key holds a value of --type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			return app.Session(func(cfg *configtree.Config) error {
				ok, err := hasKey(cfg, app.Kind, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(app.Out, ok)
				return nil
			})
		},
	}
}

// newDeleteCmd creates the delete command.
func newDeleteCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>...",
		Short: "Remove keys",
		Long: `Remove one or more keys. Removing a key that does not exist succeeds.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			return app.Session(func(cfg *configtree.Config) error {
				for _, key := range args {
					if err := cfg.Delete(key); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// newListCmd creates the list command.
func newListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			return app.Session(func(cfg *configtree.Config) error {
				keys, err := cfg.Keys()
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(app.Out, k)
				}
				return nil
			})
		},
	}
}

// newDumpCmd creates the dump command.
func newDumpCmd(provider *AppProvider) *cobra.Command {
	var masked []string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every stored key as TOML",
		Long: `Print every stored key and value as a flat TOML table.

Examples:
  configtree dump
  configtree dump --mask api_token,db.password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			return app.Session(func(cfg *configtree.Config) error {
				return cfg.Dump(app.Out, masked...)
			})
		},
	}

	cmd.Flags().StringSliceVar(&masked, "mask", nil, "Keys whose values are printed as "+configtree.RedactionPlaceholder)
	return cmd
}
