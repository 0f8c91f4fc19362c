package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/metricskey"
	"github.com/effective-security/mcpbrief/utils"
	"github.com/effective-security/xlog"
)

// UserAgent is sent with upstream requests,
// Nominatim rejects requests without it.
var UserAgent = "mcpbrief/1.0 (+https://github.com/effective-security/mcpbrief)"

// UnmarshalInput decodes the tool arguments into v.
// Empty input and `null` leave v unchanged, tools without arguments accept both.
func UnmarshalInput(input string, v any) error {
	data := bytes.TrimSpace(utils.CleanJSON([]byte(input)))
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.KV(xlog.DEBUG, "reason", "unmarshal", "err", err.Error())
		return errors.WithStack(ErrFailedUnmarshalInput)
	}
	return nil
}

// Response is the result of Fetch
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// HTTPGet issues a GET request and returns the status code with the full body.
// Transport failures are of KindUpstreamUnavailable,
// the status code is left to the caller.
func HTTPGet(ctx context.Context, client *http.Client, tool, url string) (int, []byte, error) {
	resp, err := Fetch(ctx, client, tool, url)
	if err != nil {
		return 0, nil, err
	}
	return resp.Status, resp.Body, nil
}

// Fetch is HTTPGet that also returns the Content-Type header,
// callers decoding text use it to detect the charset.
func Fetch(ctx context.Context, client *http.Client, tool, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, InvalidInput("invalid URL %q: %s", url, err.Error())
	}
	req.Header.Set("User-Agent", UserAgent)

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, Upstream(err, "failed to fetch %s", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Upstream(err, "failed to read response from %s", url)
	}
	metricskey.StatsUpstreamBytesReceived.IncrCounter(float64(len(body)), tool)

	logger.ContextKV(ctx, xlog.DEBUG,
		"tool", tool,
		"url", url,
		"status", resp.StatusCode,
		"size", len(body),
	)
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
