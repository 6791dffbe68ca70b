package builtin

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"warden/internal/agent/ports"
	"warden/internal/tools/builtin/shared"
)

type fileWrite struct {
	shared.BaseTool
}

// NewFileWrite returns the file_write tool.
func NewFileWrite() ports.ToolExecutor {
	return &fileWrite{
		BaseTool: shared.NewBaseTool(
			ports.ToolDefinition{
				Name:        "file_write",
				Description: "Write content to a file, creating parent directories as needed. Use encoding=base64 for binary data.",
				Parameters: ports.ParameterSchema{
					Type: "object",
					Properties: map[string]ports.Property{
						"path":             {Type: "string", Description: "Path of the file to write"},
						"content":          {Type: "string", Description: "Text content or base64 payload"},
						"encoding":         {Type: "string", Description: "Content encoding: utf-8 or base64"},
						"append":           {Type: "boolean", Description: "Append to the file instead of overwriting"},
						"trailing_newline": {Type: "boolean", Description: "Add a trailing newline (text only)"},
					},
					Required: []string{"path", "content"},
				},
			},
			ports.ToolMetadata{
				Name:     "file_write",
				Version:  "0.1.0",
				Category: "files",
				Tags:     []string{"file", "write"},
			},
		),
	}
}

func (t *fileWrite) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	path := strings.TrimSpace(shared.StringArg(call.Arguments, "path"))
	if path == "" {
		err := errors.New("path is required")
		return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
	}

	content, hasContent := call.Arguments["content"].(string)
	if !hasContent {
		err := errors.New("content is required")
		return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
	}

	payload := []byte(content)
	if strings.EqualFold(strings.TrimSpace(shared.StringArg(call.Arguments, "encoding")), "base64") {
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
		}
		payload = decoded
	} else if shared.BoolArg(call.Arguments, "trailing_newline", false) && !strings.HasSuffix(content, "\n") {
		payload = append(payload, '\n')
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
	}

	written := 0
	if shared.BoolArg(call.Arguments, "append", false) {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
		}
		defer func() { _ = file.Close() }()
		n, err := file.Write(payload)
		if err != nil {
			return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
		}
		written = n
	} else {
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
		}
		written = len(payload)
	}

	return &ports.ToolResult{
		CallID:  call.ID,
		Content: []ports.ContentBlock{ports.TextBlock(fmt.Sprintf("Wrote %d bytes to %s", written, path))},
		Metadata: map[string]any{
			"path":          path,
			"bytes_written": written,
		},
	}, nil
}
