package builtin

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"warden/internal/agent/ports"
	"warden/internal/tools/builtin/shared"
)

const defaultMaxReadBytes = 10 << 20

// Media types recognized by extension. The guard layer re-verifies these
// against the actual bytes after the read completes.
var imageMediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

type fileRead struct {
	shared.BaseTool
	maxBytes int64
}

// NewFileRead returns the file_read tool. maxBytes caps readable file size;
// zero selects the default.
func NewFileRead(maxBytes int64) ports.ToolExecutor {
	if maxBytes <= 0 {
		maxBytes = defaultMaxReadBytes
	}
	return &fileRead{
		maxBytes: maxBytes,
		BaseTool: shared.NewBaseTool(
			ports.ToolDefinition{
				Name:        "file_read",
				Description: "Read file contents. Text files return numbered lines; image files return the image itself.",
				Parameters: ports.ParameterSchema{
					Type: "object",
					Properties: map[string]ports.Property{
						"path":       {Type: "string", Description: "Path to the file to read"},
						"start_line": {Type: "integer", Description: "First line to return (1-based, text files only)"},
						"end_line":   {Type: "integer", Description: "Last line to return (inclusive, text files only)"},
					},
					Required: []string{"path"},
				},
			},
			ports.ToolMetadata{
				Name:     "file_read",
				Version:  "0.1.0",
				Category: "files",
				Tags:     []string{"file", "read"},
			},
		),
	}
}

func (t *fileRead) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	path := strings.TrimSpace(shared.StringArg(call.Arguments, "path"))
	if path == "" {
		err := fmt.Errorf("path is required")
		return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
	}
	if info.IsDir() {
		err := fmt.Errorf("%s is a directory", path)
		return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
	}
	if info.Size() > t.maxBytes {
		err := fmt.Errorf("%s is %d bytes, exceeds the %d byte read limit", path, info.Size(), t.maxBytes)
		return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}, nil
	}

	if mediaType, ok := imageMediaTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t.imageResult(call, path, data, mediaType), nil
	}
	return t.textResult(call, path, string(data)), nil
}

func (t *fileRead) imageResult(call ports.ToolCall, path string, data []byte, mediaType string) *ports.ToolResult {
	return &ports.ToolResult{
		CallID: call.ID,
		Content: []ports.ContentBlock{
			ports.TextBlock(fmt.Sprintf("Read image file [%s]: %s", mediaType, path)),
			ports.ImageBlock(base64.StdEncoding.EncodeToString(data), mediaType),
		},
		Metadata: map[string]any{
			"path":       path,
			"media_type": mediaType,
			"bytes":      len(data),
		},
	}
}

func (t *fileRead) textResult(call ports.ToolCall, path, content string) *ports.ToolResult {
	lines := strings.Split(content, "\n")
	start, _ := shared.IntArg(call.Arguments, "start_line")
	end, hasEnd := shared.IntArg(call.Arguments, "end_line")
	if start < 1 {
		start = 1
	}
	if !hasEnd || end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) || end < start {
		err := fmt.Errorf("line range %d-%d is outside %s (%d lines)", start, end, path, len(lines))
		return &ports.ToolResult{CallID: call.ID, Content: []ports.ContentBlock{ports.TextBlock(err.Error())}, Error: err}
	}

	var out strings.Builder
	for i := start; i <= end; i++ {
		fmt.Fprintf(&out, "%6d\t%s\n", i, lines[i-1])
	}
	return &ports.ToolResult{
		CallID:  call.ID,
		Content: []ports.ContentBlock{ports.TextBlock(out.String())},
		Metadata: map[string]any{
			"path":        path,
			"lines_total": len(lines),
			"start_line":  start,
			"end_line":    end,
		},
	}
}
