package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testToken(access string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: "refresh-" + access,
		Expiry:       time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

// testStore runs the contract shared by all TokenStore implementations
func testStore(t *testing.T, st store.TokenStore) {
	ctx := context.Background()

	_, err := st.Get(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	assert.EqualError(t, st.Put(ctx, nil), "invalid token")

	tok1 := testToken("access1")
	require.NoError(t, st.Put(ctx, tok1))

	got, err := st.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok1.AccessToken, got.AccessToken)
	assert.Equal(t, tok1.RefreshToken, got.RefreshToken)
	assert.Equal(t, tok1.TokenType, got.TokenType)
	assert.True(t, tok1.Expiry.Equal(got.Expiry))

	t.Run("update unchanged", func(t *testing.T) {
		next, err := st.Update(ctx, func(cur *oauth2.Token) (*oauth2.Token, bool, error) {
			require.NotNil(t, cur)
			assert.Equal(t, "access1", cur.AccessToken)
			return cur, false, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "access1", next.AccessToken)
	})

	t.Run("update changed", func(t *testing.T) {
		next, err := st.Update(ctx, func(cur *oauth2.Token) (*oauth2.Token, bool, error) {
			n := testToken("access2")
			n.RefreshToken = cur.RefreshToken
			return n, true, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "access2", next.AccessToken)

		got, err := st.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access2", got.AccessToken)
		assert.Equal(t, "refresh-access1", got.RefreshToken)
	})

	t.Run("update error", func(t *testing.T) {
		_, err := st.Update(ctx, func(cur *oauth2.Token) (*oauth2.Token, bool, error) {
			return nil, false, errors.New("refresh failed")
		})
		assert.EqualError(t, err, "refresh failed")

		got, err := st.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access2", got.AccessToken)
	})

	t.Run("update nil", func(t *testing.T) {
		_, err := st.Update(ctx, func(cur *oauth2.Token) (*oauth2.Token, bool, error) {
			return nil, true, nil
		})
		assert.EqualError(t, err, "invalid token")
	})
}

func Test_MemoryStore(t *testing.T) {
	st := store.NewMemoryStore(nil)
	assert.Equal(t, "memory", st.Name())
	testStore(t, st)

	t.Run("isolated copies", func(t *testing.T) {
		ctx := context.Background()
		tok := testToken("seed")
		st := store.NewMemoryStore(tok)
		tok.AccessToken = "mutated"

		got, err := st.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "seed", got.AccessToken)

		got.AccessToken = "mutated"
		got2, err := st.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "seed", got2.AccessToken)
	})

	t.Run("empty store update", func(t *testing.T) {
		st := store.NewMemoryStore(nil)
		_, err := st.Update(context.Background(), func(cur *oauth2.Token) (*oauth2.Token, bool, error) {
			assert.Nil(t, cur)
			return nil, false, store.ErrNotFound
		})
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})
}
