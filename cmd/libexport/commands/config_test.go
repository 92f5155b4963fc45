package commands_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/macropower/libexport/pkg/project"
)

func TestConfigSchemaCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "config", "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	assert.Contains(t, schema, "properties")
	assert.Contains(t, schema["required"], "group")
}

func TestConfigShowCmd(t *testing.T) {
	t.Parallel()

	dir := newSandbox(t, "assemble:\n  timeout: 90s\n")

	stdout, _, err := execute(t, "config", "show", "--config", filepath.Join(dir, project.FileName))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "org.sandbox", got["group"])
	assert.Equal(t, "build", got["buildDir"])
	assert.Equal(t, map[string]any{
		"exclude": []any{"org.sandbox", "org.sandbox.*"},
		"into":    "build/libs/lib",
	}, got["copyLib"])
	assert.Equal(t, map[string]any{"timeout": "1m30s"}, got["assemble"])
}
