package guard

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Canonical parameter names used by the builtin file tools. Models trained on
// other tool conventions keep sending the legacy spellings, so every call is
// rewritten to the canonical form before validation.
const (
	ParamPath      = "path"
	ParamOldString = "old_string"
	ParamNewString = "new_string"
)

// paramAliases maps legacy argument keys to their canonical names.
var paramAliases = map[string]string{
	"file_path": ParamPath,
	"old_str":   ParamOldString,
	"new_str":   ParamNewString,
}

// NormalizeArgs rewrites legacy alias keys in args to their canonical names.
// An explicitly supplied canonical key always wins; the alias key is removed
// either way so downstream validation never sees both. The second return is
// false when args is nil, signalling that no normalization was possible and
// the caller should keep its original value.
func NormalizeArgs(args map[string]any) (map[string]any, bool) {
	if args == nil {
		return nil, false
	}
	normalized := make(map[string]any, len(args))
	for key, value := range args {
		normalized[key] = value
	}
	for alias, canonical := range paramAliases {
		value, ok := normalized[alias]
		if !ok {
			continue
		}
		if _, exists := normalized[canonical]; !exists {
			normalized[canonical] = value
		}
		delete(normalized, alias)
	}
	return normalized, true
}

// ParseArguments decodes a raw JSON argument payload. LLMs occasionally emit
// malformed JSON (trailing commas, single quotes, unescaped newlines), so a
// failed decode goes through jsonrepair before giving up.
func ParseArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(trimmed), &args); err == nil {
		return args, nil
	}
	repaired, err := jsonrepair.JSONRepair(trimmed)
	if err != nil {
		return nil, &MalformedCallError{Reason: "invalid tool arguments: " + err.Error()}
	}
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, &MalformedCallError{Reason: "invalid tool arguments: " + err.Error()}
	}
	return args, nil
}
