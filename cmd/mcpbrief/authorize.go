package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/effective-security/mcpbrief/factory"
	"github.com/effective-security/mcpbrief/pkg/gauth"
	"github.com/spf13/cobra"
)

func authorizeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Authorize read-only access to Google Calendar",
		Long: `Runs the OAuth consent flow in the browser and saves the token
to the configured token store. The calendar tool never starts this flow,
it reports AuthRequired until the command is run.`,
		Args: cobra.NoArgs,
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

			oauthCfg, err := f.OAuthConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			tok, err := gauth.Authorize(ctx, oauthCfg, f.TokenStore(), cfg.Calendar.AuthListenAddr,
				func(authURL string) error {
					_, err := fmt.Fprintf(out, "Open the following link in your browser:\n\n%s\n\n", authURL)
					return err
				})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Token saved to %s store, expires %s\n",
				f.TokenStore().Name(), tok.Expiry.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
}
