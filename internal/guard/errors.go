package guard

import (
	"errors"
	"fmt"
)

// Sentinel errors for the guard layer. Each concrete error type wraps one of
// these so callers can branch with errors.Is while messages keep the
// offending path or parameter label.
var (
	ErrMalformedCall   = errors.New("malformed tool call")
	ErrAccessDenied    = errors.New("access denied")
	ErrResultIntegrity = errors.New("result integrity")
)

// MalformedCallError reports missing or wrong-typed required parameters.
type MalformedCallError struct {
	Label  string
	Reason string
}

func (e *MalformedCallError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("missing required parameter: %s", e.Label)
	}
	return e.Reason
}

func (e *MalformedCallError) Unwrap() error { return ErrMalformedCall }

// AccessDeniedError reports a path blocked by the sandbox or ignore policy.
type AccessDeniedError struct {
	Path   string
	Policy string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s (%s)", e.Path, e.Policy)
}

func (e *AccessDeniedError) Unwrap() error { return ErrAccessDenied }

// ResultIntegrityError reports a read result that cannot be trusted: an empty
// image payload or a declared media type contradicted by the binary content.
type ResultIntegrityError struct {
	Path     string
	Declared string
	Detected string
	Empty    bool
}

func (e *ResultIntegrityError) Error() string {
	if e.Empty {
		return fmt.Sprintf("empty image payload in read result for %s", e.Path)
	}
	return fmt.Sprintf("read result for %s declares %s but content is %s", e.Path, e.Declared, e.Detected)
}

func (e *ResultIntegrityError) Unwrap() error { return ErrResultIntegrity }
