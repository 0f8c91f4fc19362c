package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
)

const lockRetryDelay = 50 * time.Millisecond

// fileStore keeps the token as JSON in a single file.
// Read/modify/write is serialized across goroutines by mu,
// and across processes by an advisory lock on <path>.lock
type fileStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileStore returns a TokenStore backed by the file
func NewFileStore(path string) TokenStore {
	return &fileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *fileStore) Name() string {
	return "file"
}

func (s *fileStore) Get(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	if err := lockResult(s.lock.TryRLockContext(ctx, lockRetryDelay)); err != nil {
		return nil, errors.WithMessagef(err, "failed to lock %s", s.lock.Path())
	}
	defer s.unlock()

	return s.read()
}

func (s *fileStore) Put(ctx context.Context, tok *oauth2.Token) error {
	_, err := s.Update(ctx, func(*oauth2.Token) (*oauth2.Token, bool, error) {
		return tok, true, nil
	})
	return err
}

func (s *fileStore) Update(ctx context.Context, fn UpdateFunc) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	if err := lockResult(s.lock.TryLockContext(ctx, lockRetryDelay)); err != nil {
		return nil, errors.WithMessagef(err, "failed to lock %s", s.lock.Path())
	}
	defer s.unlock()

	cur, err := s.read()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	next, changed, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if changed {
		if next == nil {
			return nil, errors.New("invalid token")
		}
		if err = s.write(next); err != nil {
			return nil, err
		}
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "token_saved",
			"path", s.path,
			"expiry", next.Expiry,
		)
	}
	return next, nil
}

func (s *fileStore) ensureDir() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "failed to create folder %s", dir)
	}
	return nil
}

func lockResult(locked bool, err error) error {
	if err != nil {
		return err
	}
	if !locked {
		return errors.New("lock is not acquired")
	}
	return nil
}

func (s *fileStore) unlock() {
	if err := s.lock.Unlock(); err != nil {
		logger.KV(xlog.ERROR, "reason", "unlock", "path", s.lock.Path(), "err", err.Error())
	}
}

func (s *fileStore) read() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithStack(ErrNotFound)
		}
		return nil, errors.Wrapf(err, "failed to read token")
	}
	if len(data) == 0 {
		return nil, errors.WithStack(ErrNotFound)
	}

	tok := new(oauth2.Token)
	if err = json.Unmarshal(data, tok); err != nil {
		return nil, errors.Wrapf(err, "failed to parse token: %s", s.path)
	}
	return tok, nil
}

// write replaces the file atomically
func (s *fileStore) write(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal token")
	}

	f, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmp := f.Name()
	defer func() {
		_ = os.Remove(tmp)
	}()

	if err = f.Chmod(0o600); err == nil {
		if _, err = f.Write(data); err == nil {
			err = f.Sync()
		}
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "failed to write token")
	}

	if err = os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "failed to save token")
	}
	return nil
}
