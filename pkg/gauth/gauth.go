// Package gauth provides the Google OAuth2 credential lifecycle:
// loading the client configuration, refreshing the stored token,
// and the interactive authorization flow run out-of-band by the CLI.
package gauth

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/metricskey"
	"github.com/effective-security/mcpbrief/store"
	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/xlog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief/pkg", "gauth")

// CalendarReadonlyScope is the only scope requested by the server
const CalendarReadonlyScope = calendar.CalendarReadonlyScope

// LoadConfig returns OAuth2 config from the client secret JSON file,
// as downloaded from the Google Cloud console.
func LoadConfig(clientSecretFile string, scopes ...string) (*oauth2.Config, error) {
	if len(scopes) == 0 {
		scopes = []string{CalendarReadonlyScope}
	}
	data, err := os.ReadFile(clientSecretFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read client secret")
	}
	cfg, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse client secret: %s", clientSecretFile)
	}
	return cfg, nil
}

// ValidToken returns a valid token from the store.
// An expired token is refreshed with cfg and the result is persisted.
// Errors are of KindAuthRequired when the user must run the authorization flow.
func ValidToken(ctx context.Context, st store.TokenStore, cfg *oauth2.Config) (*oauth2.Token, error) {
	return st.Update(ctx, func(cur *oauth2.Token) (*oauth2.Token, bool, error) {
		if cur == nil {
			return nil, false, tools.AuthRequired(nil, "token not found: run `mcpbrief authorize`")
		}
		if cur.Valid() {
			return cur, false, nil
		}
		if cur.RefreshToken == "" {
			return nil, false, tools.AuthRequired(nil, "token expired and cannot be refreshed: run `mcpbrief authorize`")
		}
		if cfg == nil {
			return nil, false, tools.AuthRequired(nil, "token expired and OAuth client is not configured")
		}

		next, err := cfg.TokenSource(ctx, cur).Token()
		if err != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "refresh",
				"err", err.Error(),
			)
			return nil, false, tools.AuthRequired(err, "failed to refresh token")
		}
		if next.RefreshToken == "" {
			next.RefreshToken = cur.RefreshToken
		}

		metricskey.StatsCredentialRefreshed.IncrCounter(1, st.Name())
		logger.ContextKV(ctx, xlog.INFO,
			"status", "refreshed",
			"store", st.Name(),
			"expiry", next.Expiry,
		)
		return next, true, nil
	})
}
