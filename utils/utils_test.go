package utils_test

import (
	"testing"

	"github.com/effective-security/mcpbrief/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CleanJSON(t *testing.T) {
	input := "\n```json\n\n{\"city_name\": \"Seoul\"}\n\n```\n\n"
	clean := utils.CleanJSON([]byte(input))
	assert.Equal(t, "{\"city_name\": \"Seoul\"}", string(clean))

	input = "Here you go:\n[{\"url\": \"https://example.com\"}]\n"
	clean = utils.CleanJSON([]byte(input))
	assert.Equal(t, "[{\"url\": \"https://example.com\"}]", string(clean))

	assert.Equal(t, "plain", string(utils.CleanJSON([]byte("plain"))))
}

func Test_CollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", utils.CollapseWhitespace("  a \n\t b   c \r\n"))
	assert.Equal(t, "", utils.CollapseWhitespace(" \n "))
}

func Test_OrPlaceholder(t *testing.T) {
	assert.Equal(t, "#", utils.OrPlaceholder("", "#", "None"))
	assert.Equal(t, "#", utils.OrPlaceholder("None", "#", "None"))
	assert.Equal(t, "none", utils.OrPlaceholder("none", "#", "None"))
	assert.Equal(t, "https://a", utils.OrPlaceholder("https://a", "#"))
}

func Test_CompactJSON(t *testing.T) {
	s, err := utils.CompactJSON([]byte("{\n  \"a\": 1,\n  \"b\": [1, 2]\n}"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":[1,2]}`, s)

	_, err = utils.CompactJSON([]byte("<html>"))
	assert.Error(t, err)
}

func Test_ToJSON(t *testing.T) {
	v := map[string]any{"name": "get_weather"}
	assert.Equal(t, `{"name":"get_weather"}`, utils.ToJSON(v))
	assert.Equal(t, "{\n\t\"name\": \"get_weather\"\n}", utils.ToJSONIndent(v))
	assert.Equal(t, "name: get_weather\n", utils.ToYAML(v))
}
