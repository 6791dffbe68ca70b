package ports

import "context"

// ProgressFunc receives free-form progress updates while a tool call runs.
type ProgressFunc func(message string)

// ToolExecutor executes a single tool call
type ToolExecutor interface {
	// Execute runs the tool with given arguments
	Execute(ctx context.Context, call ToolCall) (*ToolResult, error)

	// Definition returns the tool's schema for the LLM
	Definition() ToolDefinition

	// Metadata returns tool metadata
	Metadata() ToolMetadata
}

// ToolRegistry manages available tools
type ToolRegistry interface {
	// Register adds a tool to the registry
	Register(tool ToolExecutor) error

	// Get retrieves a tool by name
	Get(name string) (ToolExecutor, error)

	// List returns all available tools
	List() []ToolDefinition

	// Unregister removes a tool
	Unregister(name string) error
}

// ToolCall represents a request to execute a tool
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Progress  ProgressFunc   `json:"-"`
}

// ContentBlock is a single entry in a tool result. Kind decides which fields
// carry the payload; kinds other than text and image pass through untouched.
type ContentBlock struct {
	Kind      string         `json:"kind"`
	Text      string         `json:"text,omitempty"`
	Data      string         `json:"data,omitempty"`
	MediaType string         `json:"media_type,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Block kinds understood by this module.
const (
	BlockText  = "text"
	BlockImage = "image"
)

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockText, Text: text}
}

// ImageBlock builds an image content block from a base64 payload.
func ImageBlock(data, mediaType string) ContentBlock {
	return ContentBlock{Kind: BlockImage, Data: data, MediaType: mediaType}
}

// ToolResult is the execution result
type ToolResult struct {
	CallID   string         `json:"call_id"`
	Content  []ContentBlock `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Error    error          `json:"-"`
}

// TextContent concatenates the text blocks of a result.
func (r *ToolResult) TextContent() string {
	if r == nil {
		return ""
	}
	var out string
	for _, block := range r.Content {
		if block.Kind == BlockText {
			if out != "" {
				out += "\n"
			}
			out += block.Text
		}
	}
	return out
}

// CloneResult returns a copy of res with an independent content slice so the
// normalizer can rewrite blocks without touching the original value.
func CloneResult(res *ToolResult) *ToolResult {
	if res == nil {
		return nil
	}
	cloned := *res
	if len(res.Content) > 0 {
		blocks := make([]ContentBlock, len(res.Content))
		copy(blocks, res.Content)
		cloned.Content = blocks
	}
	if len(res.Metadata) > 0 {
		meta := make(map[string]any, len(res.Metadata))
		for k, v := range res.Metadata {
			meta[k] = v
		}
		cloned.Metadata = meta
	}
	return &cloned
}

// ToolDefinition describes a tool for the LLM
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

// ToolMetadata contains tool information
type ToolMetadata struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Dangerous bool     `json:"dangerous"`
}

// ParameterSchema defines tool parameters (JSON Schema format)
type ParameterSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property defines a single parameter
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Enum        []any  `json:"enum,omitempty"`
}

// CloneDefinition deep-copies a tool definition so decorators can patch the
// schema without mutating the original.
func CloneDefinition(def ToolDefinition) ToolDefinition {
	cloned := def
	if def.Parameters.Properties != nil {
		props := make(map[string]Property, len(def.Parameters.Properties))
		for name, prop := range def.Parameters.Properties {
			props[name] = prop
		}
		cloned.Parameters.Properties = props
	}
	if len(def.Parameters.Required) > 0 {
		required := make([]string, len(def.Parameters.Required))
		copy(required, def.Parameters.Required)
		cloned.Parameters.Required = required
	}
	return cloned
}
