package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), "services")
	require.Error(t, err)

	var accessErr *AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.True(t, IsAccess(err))
	assert.False(t, IsParse(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecodeInvalidYAML(t *testing.T) {
	_, err := Decode([]byte("services: [unclosed"), "broken.yml")
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.True(t, IsParse(err))
	assert.Contains(t, err.Error(), "broken.yml")
}

func TestDecodeEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "# only a comment\n", "---\n", "~\n"} {
		root, err := Decode([]byte(doc), "empty.yml")
		require.NoError(t, err)
		assert.Nil(t, root)

		entries, err := Section(root, "empty.yml", "services")
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestDecodeRootNotMapping(t *testing.T) {
	_, err := Decode([]byte("- a\n- b\n"), "list.yml")
	require.Error(t, err)
	assert.True(t, IsParse(err))
	assert.Contains(t, err.Error(), "root must be a mapping")
}

func TestSectionKeepsDocumentOrder(t *testing.T) {
	doc := `
services:
  zeta:
    image: z
  alpha:
    image: a
  mid:
`
	root, err := Decode([]byte(doc), "stack.yml")
	require.NoError(t, err)

	entries, err := Section(root, "stack.yml", "services")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "zeta", entries[0].Name)
	assert.Equal(t, "alpha", entries[1].Name)
	assert.Equal(t, "mid", entries[2].Name)
	assert.Equal(t, "a", entries[1].Fields.Get("image"))
	assert.Empty(t, entries[2].Fields)
}

func TestSectionMissingKey(t *testing.T) {
	root, err := Decode([]byte("version: '3'\n"), "stack.yml")
	require.NoError(t, err)

	entries, err := Section(root, "stack.yml", "services")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSectionResolvesAliases(t *testing.T) {
	doc := `
x-base: &base
  memory: 1024
services:
  web:
    <<: *base
    cores: 2
`
	root, err := Decode([]byte(doc), "stack.yml")
	require.NoError(t, err)

	entries, err := Section(root, "stack.yml", "services")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1024, entries[0].Fields.Get("memory"))
	assert.Equal(t, 2, entries[0].Fields.Get("cores"))
}

func TestSectionEntryNotMapping(t *testing.T) {
	root, err := Decode([]byte("services:\n  web: nginx\n"), "stack.yml")
	require.NoError(t, err)

	_, err = Section(root, "stack.yml", "services")
	require.Error(t, err)
	assert.True(t, IsParse(err))
	assert.Contains(t, err.Error(), "services.web must be a mapping")
}

func TestSectionDuplicateNameLastWins(t *testing.T) {
	doc := `
services:
  web:
    vmid: 100
  db:
    vmid: 200
  web:
    vmid: 101
`
	root, err := Decode([]byte(doc), "stack.yml")
	require.NoError(t, err)

	entries, err := Section(root, "stack.yml", "services")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "web", entries[0].Name)
	assert.Equal(t, 101, entries[0].Fields.Get("vmid"))
	assert.Equal(t, "db", entries[1].Name)
}

func TestSectionEnvironmentKeepsSourceText(t *testing.T) {
	doc := `
services:
  web:
    replicas: 8.0
    environment:
      PHP_VERSION: 8.0
      BIG: 12345678901234567890123
      OCT: 0o17
      QUOTED: "007"
      EMPTY:
  worker:
    environment:
      - A=1
      - 2.50
`
	root, err := Decode([]byte(doc), "compose.yml")
	require.NoError(t, err)

	entries, err := Section(root, "compose.yml", "services")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, map[string]any{
		"PHP_VERSION": "8.0",
		"BIG":         "12345678901234567890123",
		"OCT":         "0o17",
		"QUOTED":      "007",
		"EMPTY":       nil,
	}, entries[0].Fields.Get("environment"))
	// other fields decode as usual
	assert.Equal(t, 8.0, entries[0].Fields.Get("replicas"))

	assert.Equal(t, []any{"A=1", "2.50"}, entries[1].Fields.Get("environment"))
}
