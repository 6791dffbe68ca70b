package guard

import "strings"

// RequiredParamGroup names one logical parameter and the alias keys a caller
// may use to supply it. Groups are static configuration; the guard never
// mutates them.
type RequiredParamGroup struct {
	// Label identifies the parameter in error messages, e.g. "path".
	Label string
	// Keys lists acceptable argument keys, canonical name first.
	Keys []string
	// AllowEmpty accepts present-but-empty string values.
	AllowEmpty bool
}

// RequireParam builds a group for a single canonical key.
func RequireParam(label string, keys ...string) RequiredParamGroup {
	if len(keys) == 0 {
		keys = []string{label}
	}
	return RequiredParamGroup{Label: label, Keys: keys}
}

// AssertRequired checks each group against normalized arguments, failing fast
// on the first unsatisfied one. It must run after NormalizeArgs so alias-only
// calls are not rejected spuriously.
func AssertRequired(args map[string]any, groups []RequiredParamGroup) error {
	if args == nil {
		return &MalformedCallError{Reason: "missing parameters"}
	}
	for _, group := range groups {
		if !groupSatisfied(args, group) {
			return &MalformedCallError{Label: group.Label}
		}
	}
	return nil
}

func groupSatisfied(args map[string]any, group RequiredParamGroup) bool {
	for _, key := range group.Keys {
		value, ok := args[key]
		if !ok {
			continue
		}
		str, ok := value.(string)
		if !ok {
			continue
		}
		if group.AllowEmpty || strings.TrimSpace(str) != "" {
			return true
		}
	}
	return false
}
