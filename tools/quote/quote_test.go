package quote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/mcpbrief/tools/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1746057600,
	"model": "gpt-5-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "천 리 길도 한 걸음부터.\n"}
	}],
	"usage": {"prompt_tokens": 40, "completion_tokens": 12, "total_tokens": 52}
}`

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, status *atomic.Int32, body *atomic.Value, calls *atomic.Int32) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-5-mini", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, quote.SystemPrompt, req.Messages[0].Content)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, quote.UserPrompt, req.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	t.Cleanup(server.Close)
	return server
}

func Test_Tool(t *testing.T) {
	ctx := context.Background()

	var status, calls atomic.Int32
	var body atomic.Value
	status.Store(http.StatusOK)
	body.Store(completion)
	server := chatServer(t, &status, &body, &calls)

	tool, err := quote.New(quote.Config{
		APIKey:     "test-key",
		BaseURL:    server.URL + "/",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	assert.Equal(t, quote.ToolName, tool.Name())
	assert.Equal(t, quote.DefaultModel, tool.Model())
	assert.NotEmpty(t, tool.Description())

	t.Run("quote", func(t *testing.T) {
		out, err := tool.Call(ctx, "{}")
		require.NoError(t, err)
		assert.Equal(t, "천 리 길도 한 걸음부터.\n", out)
	})

	t.Run("empty choices", func(t *testing.T) {
		body.Store(`{"id":"chatcmpl-2","object":"chat.completion","model":"gpt-5-mini","choices":[]}`)
		defer body.Store(completion)

		_, err := tool.Call(ctx, "")
		require.Error(t, err)
		assert.Equal(t, tools.KindUpstreamUnavailable, tools.KindOf(err))
		assert.Equal(t, "UpstreamUnavailable: empty response", tools.ErrorText(err))
	})

	t.Run("not retried", func(t *testing.T) {
		status.Store(http.StatusServiceUnavailable)
		body.Store(`{"error":{"message":"overloaded","type":"server_error"}}`)
		defer func() {
			status.Store(http.StatusOK)
			body.Store(completion)
		}()

		before := calls.Load()
		_, err := tool.Call(ctx, "{}")
		require.Error(t, err)
		assert.Equal(t, tools.KindUpstreamUnavailable, tools.KindOf(err))
		assert.Equal(t, before+1, calls.Load())
	})

	t.Run("rejected key", func(t *testing.T) {
		status.Store(http.StatusUnauthorized)
		body.Store(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
		defer func() {
			status.Store(http.StatusOK)
			body.Store(completion)
		}()

		_, err := tool.Call(ctx, "{}")
		require.Error(t, err)
		assert.Equal(t, tools.KindAuthRequired, tools.KindOf(err))
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := tool.Call(ctx, "{not json")
		require.Error(t, err)
		assert.Equal(t, tools.KindInvalidInput, tools.KindOf(err))
	})
}

func TestNew(t *testing.T) {
	_, err := quote.New(quote.Config{})
	assert.EqualError(t, err, "OpenAI API key is required")

	tool, err := quote.New(quote.Config{APIKey: "k", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", tool.Model())
}
