package shared

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// StringArg fetches a string-like argument from the tool call map, returning
// an empty string when the key is absent or nil.
func StringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	value, ok := args[key]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// IntArg parses an integer-like argument, returning (0, false) if absent or
// invalid. JSON decoding yields float64 for numbers, so that case comes
// first.
func IntArg(args map[string]any, key string) (int, bool) {
	if args == nil {
		return 0, false
	}
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

// BoolArg reads a boolean argument, returning def when absent or non-boolean.
func BoolArg(args map[string]any, key string, def bool) bool {
	if args == nil {
		return def
	}
	if value, ok := args[key].(bool); ok {
		return value
	}
	return def
}
