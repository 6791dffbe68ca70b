package builtin

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriteCreatesFileAndParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", "nested", "out.txt")

	res := execute(t, NewFileWrite(), map[string]any{"path": path, "content": "hello"})
	require.NoError(t, res.Error)
	assert.Contains(t, res.TextContent(), "Wrote 5 bytes")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFileWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old content"), 0o644))

	res := execute(t, NewFileWrite(), map[string]any{"path": path, "content": "new"})
	require.NoError(t, res.Error)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFileWriteAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o644))

	res := execute(t, NewFileWrite(), map[string]any{"path": path, "content": "second\n", "append": true})
	require.NoError(t, res.Error)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestFileWriteBase64(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	raw := []byte{0x00, 0x01, 0xFF}

	res := execute(t, NewFileWrite(), map[string]any{
		"path":     path,
		"content":  base64.StdEncoding.EncodeToString(raw),
		"encoding": "base64",
	})
	require.NoError(t, res.Error)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestFileWriteBadBase64Fails(t *testing.T) {
	dir := t.TempDir()
	res := execute(t, NewFileWrite(), map[string]any{
		"path":     filepath.Join(dir, "blob.bin"),
		"content":  "not base64!!!",
		"encoding": "base64",
	})
	assert.Error(t, res.Error)
}

func TestFileWriteTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	res := execute(t, NewFileWrite(), map[string]any{"path": path, "content": "line", "trailing_newline": true})
	require.NoError(t, res.Error)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}

func TestFileWriteMissingContent(t *testing.T) {
	res := execute(t, NewFileWrite(), map[string]any{"path": filepath.Join(t.TempDir(), "x.txt")})
	require.Error(t, res.Error)
	assert.Contains(t, res.Error.Error(), "content")
}
