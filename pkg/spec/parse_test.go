package spec

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	first, err := Parse([]byte(validSpecJSON))
	require.NoError(t, err)

	data, err := Marshal(first)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])
	assert.Contains(t, string(data), "\n  \"id\": \"github-repos\"")

	second, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The serialised form carries the same information as the input document.
	var in, out any
	require.NoError(t, json.Unmarshal([]byte(validSpecJSON), &in))
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestParse_InvalidJSON(t *testing.T) {
	s, err := Parse([]byte(`{"id": `))
	require.Error(t, err)
	assert.Nil(t, s)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "syntax", errs[0].Keyword)
}

func TestParse_StripsBOM(t *testing.T) {
	_, err := Parse(append([]byte("\xef\xbb\xbf"), validSpecJSON...))
	assert.NoError(t, err)
}

const validSpecYAML = `
id: disk-usage
title: Disk usage
description: Show disk usage of the sandbox
mode: detail
steps:
  - type: shell
    config:
      command: du -sh {{sandboxDir}}
      timeout: 2000
    outputVar: usage
ui:
  mode: detail
  dataSource: usage
  content: "{{usage.stdout}}"
metadata:
  created: 2025-01-02T15:04:05Z
  modified: "2025-01-02T15:04:05Z"
  tags: []
`

func TestParseYAML(t *testing.T) {
	s, err := ParseYAML([]byte(validSpecYAML))
	require.NoError(t, err)

	assert.Equal(t, "disk-usage", s.ID)
	assert.Equal(t, ModeDetail, s.Mode)
	// YAML integers decode as JSON numbers
	assert.Equal(t, float64(2000), s.Steps[0].Config["timeout"])
	assert.Equal(t, "2025-01-02T15:04:05Z", s.Metadata.Created)
	assert.Equal(t, "{{usage.stdout}}", s.UI.Content)
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := ParseYAML([]byte("id: [unclosed"))
	require.Error(t, err)

	_, err = ParseYAML([]byte("id: x\nmode: list\n"))
	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.True(t, errors.Is(err, &ValidationError{Path: "$.title", Keyword: "required"}))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "repos.json")
	yamlPath := filepath.Join(dir, "usage.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(validSpecJSON), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte(validSpecYAML), 0o600))

	s, err := ParseFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "github-repos", s.ID)

	s, err = ParseFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "disk-usage", s.ID)

	_, err = ParseFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClone(t *testing.T) {
	s, err := Parse([]byte(validSpecJSON))
	require.NoError(t, err)

	c := s.Clone()
	c.Steps[0].Config["headers"].(map[string]any)["Accept"] = "text/plain"
	c.UI.ItemProps.Accessories[0] = "changed"
	c.Metadata.Tags[0] = "changed"

	assert.Equal(t, "application/json", s.Steps[0].Config["headers"].(map[string]any)["Accept"])
	assert.Equal(t, "{{item.stargazers_count}}", s.UI.ItemProps.Accessories[0])
	assert.Equal(t, "github", s.Metadata.Tags[0])
}
