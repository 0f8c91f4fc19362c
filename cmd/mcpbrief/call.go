package main

import (
	"fmt"

	"github.com/effective-security/mcpbrief/callbacks"
	"github.com/effective-security/mcpbrief/factory"
	"github.com/spf13/cobra"
)

func callCmd(flags *globalFlags) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "call <tool> [json]",
		Short: "Invoke a tool once and print its output",
		Long: `Dispatches a single call through the registry, the same path
the MCP transports use. Tool events are printed to stderr,
the output to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			f, err := factory.New(cfg)
			if err != nil {
				return err
			}
			defer f.Close()

			mode := callbacks.ModeDefault
			if verbose {
				mode = callbacks.ModeVerbose
			}
			registry, err := f.NewRegistry(callbacks.NewFanout(
				callbacks.NewPackageLogger(logger),
				callbacks.NewPrinter(cmd.ErrOrStderr(), mode),
			))
			if err != nil {
				return err
			}

			input := "{}"
			if len(args) > 1 {
				input = args[1]
			}
			out, err := registry.Dispatch(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the tool output with the events")
	return cmd
}
