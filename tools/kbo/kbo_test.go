package kbo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/mcpbrief/tools/kbo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ranking = `{"list":[{"name":"LG","rank":1,"win":85,"loss":56,"draw":3},
 {"name":"한화","rank":2,"win":83,"loss":57,"draw":4}]}`

func Test_Tool(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/rank.json":
			assert.Equal(t, "kbo", q.Get("leagueCode"))
			assert.Equal(t, "2025", q.Get("seasonKey"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(ranking))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}
	}))
	defer server.Close()

	tool, err := kbo.New()
	require.NoError(t, err)
	tool.WithRankURL(server.URL + "/rank.json?leagueCode=kbo&seasonKey=2025").
		WithHTTPClient(server.Client())

	assert.Equal(t, kbo.ToolName, tool.Name())
	assert.NotEmpty(t, tool.Description())

	t.Run("verbatim", func(t *testing.T) {
		out, err := tool.Call(ctx, "{}")
		require.NoError(t, err)
		assert.Equal(t, ranking, out)
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := tool.Call(ctx, "{}")
		require.NoError(t, err)
		for range 3 {
			next, err := tool.Call(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, first, next)
		}
	})

	t.Run("error status is passed through", func(t *testing.T) {
		tool, err := kbo.New()
		require.NoError(t, err)
		tool.WithRankURL(server.URL + "/other").WithHTTPClient(server.Client())

		res, err := tool.Run(ctx, &kbo.Request{})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, res.Status)
		assert.Equal(t, "<html>bad gateway</html>", string(res.Body))
	})

	t.Run("unreachable", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		tool, err := kbo.New()
		require.NoError(t, err)
		tool.WithRankURL(dead.URL)

		_, err = tool.Call(ctx, "{}")
		require.Error(t, err)
		assert.Equal(t, tools.KindUpstreamUnavailable, tools.KindOf(err))
	})
}
