package store

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
)

type inMemory struct {
	mu  sync.Mutex
	tok *oauth2.Token
}

// NewMemoryStore returns a TokenStore kept in process memory
func NewMemoryStore(tok *oauth2.Token) TokenStore {
	return &inMemory{tok: cloneToken(tok)}
}

func (m *inMemory) Name() string {
	return "memory"
}

func (m *inMemory) Get(_ context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok == nil {
		return nil, errors.WithStack(ErrNotFound)
	}
	return cloneToken(m.tok), nil
}

func (m *inMemory) Put(_ context.Context, tok *oauth2.Token) error {
	if tok == nil {
		return errors.New("invalid token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = cloneToken(tok)
	return nil
}

func (m *inMemory) Update(_ context.Context, fn UpdateFunc) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, changed, err := fn(cloneToken(m.tok))
	if err != nil {
		return nil, err
	}
	if changed {
		if next == nil {
			return nil, errors.New("invalid token")
		}
		m.tok = cloneToken(next)
	}
	return next, nil
}
