package builtin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"warden/internal/agent/ports"
	"warden/internal/diff"
	"warden/internal/tools/builtin/shared"
)

type fileEdit struct {
	shared.BaseTool
	differ *diff.Generator
}

// NewFileEdit returns the file_edit tool. Edits replace one exact, unique
// occurrence of old_string; an empty old_string creates a new file.
func NewFileEdit() ports.ToolExecutor {
	return &fileEdit{
		differ: diff.NewGenerator(false),
		BaseTool: shared.NewBaseTool(
			ports.ToolDefinition{
				Name:        "file_edit",
				Description: "Edit a file by replacing an exact unique text match, or create a new file with an empty old_string. Returns a unified diff of the change.",
				Parameters: ports.ParameterSchema{
					Type: "object",
					Properties: map[string]ports.Property{
						"path":       {Type: "string", Description: "Path to the file to modify"},
						"old_string": {Type: "string", Description: "Text to replace (must be unique in the file; empty for a new file)"},
						"new_string": {Type: "string", Description: "Replacement text"},
					},
					Required: []string{"path", "old_string", "new_string"},
				},
			},
			ports.ToolMetadata{
				Name:     "file_edit",
				Version:  "0.1.0",
				Category: "files",
				Tags:     []string{"file", "edit"},
			},
		),
	}
}

func (t *fileEdit) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	path := strings.TrimSpace(shared.StringArg(call.Arguments, "path"))
	if path == "" {
		err := errors.New("path is required")
		return failed(call.ID, err), nil
	}
	newString, ok := call.Arguments["new_string"].(string)
	if !ok {
		err := errors.New("new_string is required")
		return failed(call.ID, err), nil
	}
	oldString, _ := call.Arguments["old_string"].(string)

	if oldString == "" {
		return t.createFile(call, path, newString)
	}
	return t.editFile(call, path, oldString, newString)
}

func (t *fileEdit) createFile(call ports.ToolCall, path, content string) (*ports.ToolResult, error) {
	if _, err := os.Stat(path); err == nil {
		return failed(call.ID, fmt.Errorf("file already exists: %s", path)), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return failed(call.ID, err), nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return failed(call.ID, err), nil
	}

	change := t.differ.GenerateUnified("", content, path)
	lines := len(strings.Split(content, "\n"))
	return &ports.ToolResult{
		CallID:  call.ID,
		Content: []ports.ContentBlock{ports.TextBlock(fmt.Sprintf("Created %s (%d lines)", path, lines))},
		Metadata: map[string]any{
			"path":        path,
			"operation":   "created",
			"lines_total": lines,
			"diff":        change.UnifiedDiff,
		},
	}, nil
}

func (t *fileEdit) editFile(call ports.ToolCall, path, oldString, newString string) (*ports.ToolResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(call.ID, err), nil
	}
	original := string(data)

	switch occurrences := strings.Count(original, oldString); {
	case occurrences == 0:
		return failed(call.ID, fmt.Errorf("old_string not found in %s", path)), nil
	case occurrences > 1:
		return failed(call.ID, fmt.Errorf("old_string appears %d times in %s; include more context to make it unique", occurrences, path)), nil
	}

	updated := strings.Replace(original, oldString, newString, 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return failed(call.ID, err), nil
	}

	change := t.differ.GenerateUnified(original, updated, path)
	return &ports.ToolResult{
		CallID:  call.ID,
		Content: []ports.ContentBlock{ports.TextBlock(fmt.Sprintf("Updated %s (+%d -%d lines)", path, change.AddedLines, change.DeletedLines))},
		Metadata: map[string]any{
			"path":          path,
			"operation":     "edited",
			"lines_added":   change.AddedLines,
			"lines_removed": change.DeletedLines,
			"diff":          change.UnifiedDiff,
		},
	}, nil
}

func failed(callID string, err error) *ports.ToolResult {
	return &ports.ToolResult{
		CallID:  callID,
		Content: []ports.ContentBlock{ports.TextBlock(err.Error())},
		Error:   err,
	}
}
