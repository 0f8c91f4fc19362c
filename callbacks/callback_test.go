package callbacks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/effective-security/mcpbrief/callbacks"
	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)

	cb.OnToolStart(ctx, "get_weather", `{"city_name":"Seoul"}`)
	cb.OnToolEnd(ctx, "get_weather", `{"city_name":"Seoul"}`, `{"current_weather":{}}`)
	cb.OnToolError(ctx, "get_weather", `{"city_name":"Atlantis"}`, tools.NotFound("coordinates not found: Atlantis"))
	cb.OnToolNotFound(ctx, "get_stock")

	res := buf.String()
	assert.Contains(t, res, "Tool Start: get_weather")
	assert.Contains(t, res, `Input: {"city_name":"Seoul"}`)
	assert.Contains(t, res, "Tool End: get_weather")
	assert.Contains(t, res, `Output: {"current_weather":{}}`)
	assert.Contains(t, res, "Tool Error: get_weather: NotFound: coordinates not found: Atlantis")
	assert.Contains(t, res, "Tool Not Found: get_stock")

	buf.Reset()
	cb = callbacks.NewPrinter(&buf, callbacks.ModeDefault)
	cb.OnToolEnd(ctx, "get_kbo_rank", "{}", "secret output")
	assert.NotContains(t, buf.String(), "secret output")
}

func TestFanout(t *testing.T) {
	ctx := context.Background()

	var buf1, buf2 bytes.Buffer
	fan := callbacks.NewFanout(callbacks.NewPrinter(&buf1, callbacks.ModeDefault))
	fan.Add(callbacks.NewPrinter(&buf2, callbacks.ModeDefault))
	fan.Add(callbacks.NewPackageLogger(xlog.NewPackageLogger("github.com/effective-security/mcpbrief", "callbacks_test")))

	fan.OnToolStart(ctx, "daily_quote", "{}")
	fan.OnToolEnd(ctx, "daily_quote", "{}", "quote")
	fan.OnToolError(ctx, "today_schedule", "{}", tools.AuthRequired(nil, "token not found"))
	fan.OnToolNotFound(ctx, "nope")

	for _, buf := range []*bytes.Buffer{&buf1, &buf2} {
		res := buf.String()
		require.NotEmpty(t, res)
		assert.Contains(t, res, "Tool Start: daily_quote")
		assert.Contains(t, res, "Tool End: daily_quote")
		assert.Contains(t, res, "Tool Error: today_schedule: AuthRequired: token not found")
		assert.Contains(t, res, "Tool Not Found: nope")
	}
}

func TestWithRegistry(t *testing.T) {
	var buf bytes.Buffer
	r := tools.NewRegistry(callbacks.NewPrinter(&buf, callbacks.ModeVerbose))
	require.NoError(t, r.Register("brief_today", "briefing", nil, func(context.Context, string) (string, error) {
		return "## summary", nil
	}))

	out, err := r.Dispatch(context.Background(), "brief_today", "{}")
	require.NoError(t, err)
	assert.Equal(t, "## summary", out)
	assert.Equal(t, "Tool Start: brief_today\nInput: {}\nTool End: brief_today\nOutput: ## summary\n", buf.String())
}
