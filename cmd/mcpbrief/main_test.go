package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/mcpbrief/tools/briefing"
	"github.com/effective-security/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T) string {
	dir := t.TempDir()
	file := filepath.Join(dir, "mcpbrief.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
listen_addr: 127.0.0.1:0
token_store:
  kind: file
  path: token.json
openai:
  api_key: sk-test
`), 0o600))
	return file
}

func execute(t *testing.T, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTools(t *testing.T) {
	cfg := writeConfig(t)

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "tools", "--cfg", cfg, "--log-level", "error")
		require.NoError(t, err)

		var d tools.ToolsDescription
		require.NoError(t, json.Unmarshal([]byte(out), &d))
		require.Len(t, d.Tools, 7)
		assert.Equal(t, "scrape_page_text", d.Tools[0].Name)
		assert.Equal(t, "brief_today", d.Tools[6].Name)
	})

	t.Run("yaml", func(t *testing.T) {
		out, _, err := execute(t, "tools", "--cfg", cfg, "--format", "yaml", "--log-level", "error")
		require.NoError(t, err)

		var d tools.ToolsDescription
		require.NoError(t, yaml.Unmarshal([]byte(out), &d))
		require.Len(t, d.Tools, 7)
		assert.Equal(t, "daily_quote", d.Tools[5].Name)
	})

	t.Run("format", func(t *testing.T) {
		_, _, err := execute(t, "tools", "--cfg", cfg, "--format", "xml")
		assert.EqualError(t, err, "unsupported format: xml")
	})
}

func TestFlags(t *testing.T) {
	_, _, err := execute(t, "tools", "--log-level", "loud")
	assert.EqualError(t, err, "invalid log level: loud")

	_, _, err = execute(t, "tools", "--cfg", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = execute(t, "serve", "extra")
	assert.Error(t, err)

	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestAuthorize_NoClientSecret(t *testing.T) {
	_, _, err := execute(t, "authorize", "--cfg", writeConfig(t), "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read client secret")
}

func TestCall(t *testing.T) {
	cfg := writeConfig(t)

	sink, stop, err := startMetrics(io.Discard)
	require.NoError(t, err)
	defer stop()

	t.Run("verbose", func(t *testing.T) {
		out, errOut, err := execute(t, "call", briefing.ToolName, "--cfg", cfg, "--verbose", "--log-level", "error")
		require.NoError(t, err)
		assert.Equal(t, briefing.Template+"\n", out)
		assert.Contains(t, errOut, "Tool Start: brief_today")
		assert.Contains(t, errOut, "Tool End: brief_today")
		assert.Contains(t, errOut, "Output: ")
	})

	t.Run("default", func(t *testing.T) {
		_, errOut, err := execute(t, "call", briefing.ToolName, "{}", "--cfg", cfg, "--log-level", "error")
		require.NoError(t, err)
		assert.Contains(t, errOut, "Tool End: brief_today")
		assert.NotContains(t, errOut, "Output: ")
	})

	t.Run("not found", func(t *testing.T) {
		_, errOut, err := execute(t, "call", "nope", "--cfg", cfg, "--log-level", "error")
		assert.EqualError(t, err, "tool not found: nope")
		assert.Contains(t, errOut, "Tool Not Found: nope")
	})

	t.Run("invalid input", func(t *testing.T) {
		_, errOut, err := execute(t, "call", briefing.ToolName, "[", "--cfg", cfg, "--log-level", "error")
		require.Error(t, err)
		assert.Equal(t, tools.KindInvalidInput, tools.KindOf(err))
		assert.Contains(t, errOut, "Tool Error: brief_today: InvalidInput: ")
	})

	assert.Equal(t, 2.0, counterSum(sink, "stats_tool_calls_succeeded;tool=brief_today"))
	assert.Equal(t, 1.0, counterSum(sink, "stats_tool_calls_failed;tool=brief_today;kind=InvalidInput"))
	assert.Equal(t, 1.0, counterSum(sink, "stats_tool_calls_not_found;tool=nope"))
}

// counterSum adds up the counter over the retained intervals
func counterSum(sink *metrics.InmemSink, key string) float64 {
	var sum float64
	for _, intv := range sink.Data() {
		intv.RLock()
		if v, ok := intv.Counters[key]; ok {
			sum += v.Sum
		}
		intv.RUnlock()
	}
	return sum
}

func TestEnvFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))

	dir := t.TempDir()
	cfg := filepath.Join(dir, "mcpbrief.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("listen_addr: 127.0.0.1:0\n"), 0o600))

	out, _, err := execute(t, "tools", "--cfg", cfg, "--log-level", "error")
	require.NoError(t, err)
	var d tools.ToolsDescription
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Len(t, d.Tools, 6)

	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("OPENAI_API_KEY=sk-dotenv\n"), 0o600))

	out, _, err = execute(t, "tools", "--cfg", cfg, "--env-file", env, "--log-level", "error")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Len(t, d.Tools, 7)
}
