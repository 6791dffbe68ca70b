package guard

import (
	"warden/internal/agent/ports"
)

// PatchDefinition returns a definition whose parameter schema also accepts
// the legacy alias spellings. For every canonical field that has an alias and
// appears in Properties, the alias is declared as an additional property
// mirroring the canonical one, and the canonical field is dropped from
// Required; schema validation can run before alias rewriting, so an
// alias-only call must still validate. Definitions without any aliased field
// are returned unchanged.
func PatchDefinition(def ports.ToolDefinition) ports.ToolDefinition {
	if def.Parameters.Properties == nil {
		return def
	}

	touched := false
	for alias, canonical := range paramAliases {
		_, hasCanonical := def.Parameters.Properties[canonical]
		if !hasCanonical {
			continue
		}
		_, hasAlias := def.Parameters.Properties[alias]
		if !hasAlias || containsString(def.Parameters.Required, canonical) {
			touched = true
			break
		}
	}
	if !touched {
		return def
	}

	patched := ports.CloneDefinition(def)
	for alias, canonical := range paramAliases {
		prop, ok := patched.Parameters.Properties[canonical]
		if !ok {
			continue
		}
		if _, declared := patched.Parameters.Properties[alias]; !declared {
			patched.Parameters.Properties[alias] = prop
		}
		patched.Parameters.Required = removeString(patched.Parameters.Required, canonical)
	}
	return patched
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func removeString(list []string, target string) []string {
	out := list[:0]
	for _, item := range list {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}
