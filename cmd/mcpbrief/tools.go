package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/factory"
	"github.com/effective-security/mcpbrief/utils"
	"github.com/spf13/cobra"
)

func toolsCmd(flags *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the names and descriptions of the tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			f, err := factory.New(cfg)
			if err != nil {
				return err
			}
			defer f.Close()

			registry, err := f.NewRegistry()
			if err != nil {
				return err
			}

			d := registry.Describe()
			switch format {
			case "json":
				fmt.Fprintln(cmd.OutOrStdout(), utils.ToJSONIndent(d))
			case "yaml":
				fmt.Fprint(cmd.OutOrStdout(), utils.ToYAML(d))
			default:
				return errors.Errorf("unsupported format: %s", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json|yaml")
	return cmd
}
