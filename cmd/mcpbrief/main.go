// Command mcpbrief serves the daily briefing tools over MCP.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/config"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief", "cmd")

// Version is set at build time
var Version = "0.1.0"

type globalFlags struct {
	cfgFile  string
	envFile  string
	logLevel string
	logJSON  bool
}

func (g *globalFlags) loadConfig() (*config.Config, error) {
	if err := config.LoadEnv(g.envFile); err != nil {
		return nil, err
	}
	return config.Load(g.cfgFile)
}

var logLevels = map[string]xlog.LogLevel{
	"trace":   xlog.TRACE,
	"debug":   xlog.DEBUG,
	"info":    xlog.INFO,
	"notice":  xlog.NOTICE,
	"warning": xlog.WARNING,
	"error":   xlog.ERROR,
}

// setupLogger writes to errOut, stdout is reserved for the stdio transport
func (g *globalFlags) setupLogger(errOut io.Writer) error {
	level, ok := logLevels[strings.ToLower(g.logLevel)]
	if !ok {
		return errors.Errorf("invalid log level: %s", g.logLevel)
	}
	if g.logJSON {
		xlog.SetFormatter(xlog.NewJSONFormatter(errOut))
	} else {
		xlog.SetFormatter(xlog.NewStringFormatter(errOut))
	}
	xlog.SetGlobalLogLevel(level)
	return nil
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "mcpbrief",
		Short:         "Daily briefing tools for MCP agents",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return flags.setupLogger(errOut)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&flags.cfgFile, "cfg", "", "path to the configuration file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", config.DefaultEnvFile, "dotenv file with environment variables, skipped if missing")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: trace|debug|info|notice|warning|error")
	root.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "write logs as JSON")

	root.AddCommand(
		serveCmd(flags),
		authorizeCmd(flags),
		toolsCmd(flags),
		callCmd(flags),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
