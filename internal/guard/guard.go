package guard

import (
	"context"
	"errors"
	"strings"

	"warden/internal/agent/ports"
	"warden/internal/ignore"
	"warden/internal/observability"
	"warden/internal/pathutil"
)

// Guard wraps tool executors with the full mediation pipeline: argument
// normalization, required-parameter assertion, sandbox containment, ignore
// policy, and read-result verification.
type Guard struct {
	paths  *pathutil.Resolver
	ignore *ignore.Resolver
	log    *observability.Logger
}

// New creates a guard. logger may be nil.
func New(paths *pathutil.Resolver, ignoreResolver *ignore.Resolver, logger *observability.Logger) *Guard {
	if ignoreResolver == nil {
		ignoreResolver = ignore.NewResolver()
	}
	return &Guard{
		paths:  paths,
		ignore: ignoreResolver,
		log:    observability.OrNop(logger).With("component", "guard"),
	}
}

// Wrap decorates tool. The returned executor reports the alias-patched
// schema and runs every check before the wrapped tool executes; the original
// executor and its definition are never mutated.
func (g *Guard) Wrap(tool ports.ToolExecutor, groups ...RequiredParamGroup) ports.ToolExecutor {
	return &guardedTool{
		inner:  tool,
		guard:  g,
		def:    PatchDefinition(tool.Definition()),
		groups: groups,
	}
}

type guardedTool struct {
	inner  ports.ToolExecutor
	guard  *Guard
	def    ports.ToolDefinition
	groups []RequiredParamGroup
}

func (t *guardedTool) Definition() ports.ToolDefinition { return t.def }

func (t *guardedTool) Metadata() ports.ToolMetadata { return t.inner.Metadata() }

// Execute runs the mediation pipeline. The pre-checks are fast and local, so
// they do not observe ctx themselves; the context is forwarded unchanged to
// the wrapped tool once the checks pass.
func (t *guardedTool) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	g := t.guard

	args, ok := NormalizeArgs(call.Arguments)
	if !ok {
		args = call.Arguments
	}

	if len(t.groups) > 0 {
		if err := AssertRequired(args, t.groups); err != nil {
			return failedResult(call.ID, err), nil
		}
	}

	if path, _ := args[ParamPath].(string); strings.TrimSpace(path) != "" {
		resolved, err := g.paths.Resolve(path)
		if err != nil {
			if errors.Is(err, pathutil.ErrEscapesRoot) {
				g.log.Warn("sandbox violation", "tool", call.Name, "path", path)
				err = &AccessDeniedError{Path: path, Policy: "sandbox root"}
			}
			return failedResult(call.ID, err), nil
		}
		if g.ignore.Blocked(resolved, g.paths.Root()) {
			g.log.Warn("ignore policy violation", "tool", call.Name, "path", resolved)
			return failedResult(call.ID, &AccessDeniedError{Path: resolved, Policy: ".ignore policy"}), nil
		}
		args[ParamPath] = resolved
	}

	guardedCall := call
	guardedCall.Arguments = args

	res, err := t.inner.Execute(ctx, guardedCall)
	if err != nil || res == nil || res.Error != nil {
		return res, err
	}

	if t.readsFiles() {
		path, _ := args[ParamPath].(string)
		normalized, nerr := NormalizeReadResult(res, path)
		if nerr != nil {
			g.log.Warn("read result rejected", "tool", call.Name, "path", path, "reason", nerr.Error())
			return failedResult(call.ID, nerr), nil
		}
		res = normalized
	}
	return res, nil
}

// readsFiles reports whether the wrapped tool returns file content that needs
// post-execution verification.
func (t *guardedTool) readsFiles() bool {
	for _, tag := range t.inner.Metadata().Tags {
		if tag == "read" {
			return true
		}
	}
	return false
}

// failedResult packs a pipeline failure into the same result shape the
// wrapped tool would have produced; the error travels inside the result.
func failedResult(callID string, err error) *ports.ToolResult {
	return &ports.ToolResult{
		CallID:  callID,
		Content: []ports.ContentBlock{ports.TextBlock(err.Error())},
		Error:   err,
	}
}
