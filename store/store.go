// Package store persists the OAuth credential token.
// At most one token exists per install, it is not namespaced per user.
package store

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"golang.org/x/oauth2"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief", "store")

// ErrNotFound is returned when no token has been persisted yet
var ErrNotFound = errors.New("token not found")

// UpdateFunc receives the current token, nil if none is stored,
// and returns the next token and whether it must be persisted.
type UpdateFunc func(cur *oauth2.Token) (next *oauth2.Token, changed bool, err error)

//go:generate mockgen -source=store.go -destination=../mocks/mockstore/store_mock.gen.go -package mockstore

// TokenStore provides access to the persisted credential token
type TokenStore interface {
	// Name returns the kind of the store
	Name() string
	// Get returns the stored token, or ErrNotFound
	Get(ctx context.Context) (*oauth2.Token, error)
	// Put replaces the stored token
	Put(ctx context.Context, tok *oauth2.Token) error
	// Update runs read/modify/write of the token exclusively,
	// and returns the token produced by fn.
	Update(ctx context.Context, fn UpdateFunc) (*oauth2.Token, error)
}

func cloneToken(tok *oauth2.Token) *oauth2.Token {
	if tok == nil {
		return nil
	}
	c := *tok
	return &c
}
