package gauth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/store"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultCallbackAddr binds the callback listener to a random loopback port
const DefaultCallbackAddr = "127.0.0.1:0"

// Authorize runs the installed-app flow:
// binds a loopback listener, passes the consent URL to open,
// waits for the redirect, exchanges the code and persists the token.
func Authorize(ctx context.Context, cfg *oauth2.Config, st store.TokenStore, listenAddr string, open func(authURL string) error) (*oauth2.Token, error) {
	if listenAddr == "" {
		listenAddr = DefaultCallbackAddr
	}
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", listenAddr)
	}

	c := *cfg
	c.RedirectURL = "http://" + ln.Addr().String() + "/"
	state := uuid.NewString()

	type result struct {
		code string
		err  error
	}
	resCh := make(chan result, 1)
	report := func(r result) {
		select {
		case resCh <- r:
		default:
		}
	}

	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("state") != state {
				http.Error(w, "invalid state", http.StatusBadRequest)
				return
			}
			if e := q.Get("error"); e != "" {
				http.Error(w, "authorization failed: "+e, http.StatusForbidden)
				report(result{err: errors.Errorf("authorization failed: %s", e)})
				return
			}
			code := q.Get("code")
			if code == "" {
				http.Error(w, "missing code", http.StatusBadRequest)
				return
			}
			fmt.Fprintln(w, "The authentication flow has completed. You may close this window.")
			report(result{code: code})
		}),
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(result{err: errors.Wrap(err, "callback server failed")})
		}
	}()
	defer func() {
		_ = srv.Shutdown(context.Background())
	}()

	authURL := c.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	logger.ContextKV(ctx, xlog.DEBUG, "status", "waiting_for_callback", "redirect", c.RedirectURL)
	if err = open(authURL); err != nil {
		return nil, errors.WithMessage(err, "failed to open authorization URL")
	}

	var res result
	select {
	case res = <-resCh:
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "authorization was not completed")
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := c.Exchange(ctx, res.code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange authorization code")
	}
	if err = st.Put(ctx, tok); err != nil {
		return nil, errors.WithMessage(err, "failed to save token")
	}

	logger.ContextKV(ctx, xlog.INFO,
		"status", "authorized",
		"store", st.Name(),
		"expiry", tok.Expiry,
	)
	return tok, nil
}
