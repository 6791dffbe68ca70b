package guard

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/agent/ports"
	"warden/internal/ignore"
	"warden/internal/pathutil"
)

// spyTool records every execution so tests can prove the guard fails before
// the wrapped tool runs.
type spyTool struct {
	calls   atomic.Int64
	tags    []string
	lastArg map[string]any
	result  *ports.ToolResult
}

func (s *spyTool) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	s.calls.Add(1)
	s.lastArg = call.Arguments
	if s.result != nil {
		res := *s.result
		res.CallID = call.ID
		return &res, nil
	}
	return &ports.ToolResult{
		CallID:  call.ID,
		Content: []ports.ContentBlock{ports.TextBlock("ok")},
	}, nil
}

func (s *spyTool) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name: "spy_tool",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"path": {Type: "string", Description: "target file"},
			},
			Required: []string{"path"},
		},
	}
}

func (s *spyTool) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{Name: "spy_tool", Tags: s.tags}
}

func newTestGuard(t *testing.T, root string) *Guard {
	t.Helper()
	return New(pathutil.NewResolver(root, root), ignore.NewResolver(), nil)
}

func TestGuardBlocksEscapingPathBeforeExecution(t *testing.T) {
	root := t.TempDir()
	spy := &spyTool{}
	wrapped := newTestGuard(t, root).Wrap(spy, RequireParam("path", "path", "file_path"))

	res, err := wrapped.Execute(context.Background(), ports.ToolCall{
		ID:        "c1",
		Name:      "spy_tool",
		Arguments: map[string]any{"path": "../outside.txt"},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Error(t, res.Error)
	assert.ErrorIs(t, res.Error, ErrAccessDenied)
	assert.Equal(t, int64(0), spy.calls.Load(), "wrapped tool must not execute")
}

func TestGuardBlocksIgnoredPathBeforeExecution(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ignore.FileName), []byte("secret.txt\n"), 0o644))

	spy := &spyTool{}
	wrapped := newTestGuard(t, root).Wrap(spy, RequireParam("path", "path", "file_path"))

	res, err := wrapped.Execute(context.Background(), ports.ToolCall{
		ID:        "c2",
		Name:      "spy_tool",
		Arguments: map[string]any{"path": "secret.txt"},
	})
	require.NoError(t, err)
	require.Error(t, res.Error)
	assert.ErrorIs(t, res.Error, ErrAccessDenied)
	assert.Contains(t, res.Error.Error(), ".ignore policy")
	assert.Equal(t, int64(0), spy.calls.Load())
}

func TestGuardResolvesAliasAndForwardsAbsolutePath(t *testing.T) {
	root := t.TempDir()
	spy := &spyTool{}
	wrapped := newTestGuard(t, root).Wrap(spy, RequireParam("path", "path", "file_path"))

	res, err := wrapped.Execute(context.Background(), ports.ToolCall{
		ID:        "c3",
		Name:      "spy_tool",
		Arguments: map[string]any{"file_path": "notes.txt"},
	})
	require.NoError(t, err)
	require.NoError(t, res.Error)
	require.Equal(t, int64(1), spy.calls.Load())

	got, _ := spy.lastArg[ParamPath].(string)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "notes.txt", filepath.Base(got))
	assert.NotContains(t, spy.lastArg, "file_path")
}

func TestGuardRejectsMissingRequiredParam(t *testing.T) {
	root := t.TempDir()
	spy := &spyTool{}
	wrapped := newTestGuard(t, root).Wrap(spy, RequireParam("path", "path", "file_path"))

	res, err := wrapped.Execute(context.Background(), ports.ToolCall{
		ID:        "c4",
		Name:      "spy_tool",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.Error(t, res.Error)
	assert.ErrorIs(t, res.Error, ErrMalformedCall)
	assert.Contains(t, res.Error.Error(), "path")
	assert.Equal(t, int64(0), spy.calls.Load())
}

func TestGuardVerifiesReadResults(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "photo.png")

	spy := &spyTool{
		tags: []string{"file", "read"},
		result: &ports.ToolResult{
			Content: []ports.ContentBlock{
				ports.TextBlock("Read image file [image/png]: " + target),
				ports.ImageBlock(base64.StdEncoding.EncodeToString(jpegBytes), "image/png"),
			},
		},
	}
	wrapped := newTestGuard(t, root).Wrap(spy, RequireParam("path", "path", "file_path"))

	res, err := wrapped.Execute(context.Background(), ports.ToolCall{
		ID:        "c5",
		Name:      "spy_tool",
		Arguments: map[string]any{"path": "photo.png"},
	})
	require.NoError(t, err)
	require.NoError(t, res.Error)
	require.Equal(t, int64(1), spy.calls.Load())
	assert.Equal(t, "image/jpeg", res.Content[1].MediaType)
	assert.Contains(t, res.Content[0].Text, "[image/jpeg]")
}

func TestGuardReportsPatchedDefinition(t *testing.T) {
	root := t.TempDir()
	wrapped := newTestGuard(t, root).Wrap(&spyTool{})

	def := wrapped.Definition()
	assert.Contains(t, def.Parameters.Properties, "file_path")
	assert.NotContains(t, def.Parameters.Required, "path")
}
