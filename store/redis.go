package store

import (
	"context"
	"encoding/json"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// The redis store keeps the token as JSON under `/<prefix>/oauth/token`,
// the read/modify/write in Update is guarded by WATCH on the key.

const maxTxAttempts = 3

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore returns a TokenStore backed by Redis
func NewRedisStore(client redis.UniversalClient, prefix string) TokenStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (m *redisStore) key() string {
	return path.Join(m.prefix, "oauth", "token")
}

func (m *redisStore) Name() string {
	return "redis"
}

func (m *redisStore) Get(ctx context.Context) (*oauth2.Token, error) {
	return m.get(ctx, m.client)
}

func (m *redisStore) get(ctx context.Context, c getter) (*oauth2.Token, error) {
	data, err := c.Get(ctx, m.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.WithStack(ErrNotFound)
		}
		return nil, errors.Wrap(err, "failed to get token from Redis")
	}

	tok := new(oauth2.Token)
	if err = json.Unmarshal(data, tok); err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}
	return tok, nil
}

func (m *redisStore) Put(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil {
		return errors.New("invalid token")
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return errors.Wrap(err, "failed to marshal token")
	}
	if err = m.client.Set(ctx, m.key(), data, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to store token in Redis")
	}
	return nil
}

func (m *redisStore) Update(ctx context.Context, fn UpdateFunc) (*oauth2.Token, error) {
	key := m.key()

	var next *oauth2.Token
	txf := func(tx *redis.Tx) error {
		cur, err := m.get(ctx, tx)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		var changed bool
		next, changed, err = fn(cur)
		if err != nil || !changed {
			return err
		}
		if next == nil {
			return errors.New("invalid token")
		}

		data, err := json.Marshal(next)
		if err != nil {
			return errors.Wrap(err, "failed to marshal token")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err := m.client.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
		logger.ContextKV(ctx, xlog.DEBUG,
			"reason", "tx_conflict",
			"key", key,
			"attempt", attempt,
		)
	}
	return nil, errors.Errorf("failed to update token in Redis: concurrent modification")
}
