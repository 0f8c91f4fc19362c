package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/effective-security/mcpbrief/callbacks"
	"github.com/effective-security/mcpbrief/factory"
	"github.com/effective-security/mcpbrief/mcp"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr  string
		stdio bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			_, stopMetrics, err := startMetrics(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer stopMetrics()

			f, err := factory.New(cfg)
			if err != nil {
				return err
			}
			defer f.Close()

			registry, err := f.NewRegistry(callbacks.NewPackageLogger(logger))
			if err != nil {
				return err
			}

			srv := mcp.NewServer("mcpbrief", Version)
			if err := registry.RegisterMCP(srv); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if stdio {
				return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
			}

			go func() {
				<-ctx.Done()
				logger.KV(xlog.INFO, "status", "shutting_down")
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(sctx); err != nil {
					logger.KV(xlog.ERROR, "reason", "shutdown", "err", err.Error())
				}
			}()
			return srv.ListenAndServe(cfg.ListenAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address of the HTTP transport, overrides listen_addr")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve over stdin and stdout")
	return cmd
}
