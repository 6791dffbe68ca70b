package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEscapesRoot is wrapped by every containment failure.
var ErrEscapesRoot = errors.New("path escapes sandbox root")

// EscapeError reports a path that resolved outside the sandbox root.
type EscapeError struct {
	Path string
	Root string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("path %s escapes sandbox root %s", e.Path, e.Root)
}

func (e *EscapeError) Unwrap() error { return ErrEscapesRoot }

// Resolver resolves user-supplied paths against a working directory and an
// optional sandbox root. With a root configured, any resolution outside the
// root fails; without one, paths resolve freely.
type Resolver struct {
	workingDir string
	rootDir    string
}

// NewResolver creates a resolver. workingDir defaults to the process working
// directory; rootDir may be empty to disable containment. A workingDir
// outside rootDir is snapped back to the root.
func NewResolver(workingDir, rootDir string) *Resolver {
	root := normalizeDir(rootDir)
	work := normalizeDir(workingDir)
	if work == "" {
		if root != "" {
			work = root
		} else {
			work = processWorkingDir()
		}
	}
	if root != "" && !WithinBase(root, work) {
		work = root
	}
	return &Resolver{workingDir: work, rootDir: root}
}

// WorkingDir returns the directory relative paths resolve against.
func (r *Resolver) WorkingDir() string { return r.workingDir }

// Root returns the sandbox root, empty when containment is disabled.
func (r *Resolver) Root() string { return r.rootDir }

// Resolve turns path into a cleaned absolute path and enforces sandbox
// containment. Symlinks inside the tree are resolved so a link pointing out
// of the root cannot smuggle operations past the boundary.
func (r *Resolver) Resolve(path string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(path))
	if cleaned == "" || cleaned == "." {
		return r.workingDir, nil
	}
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(r.workingDir, cleaned)
	}
	resolved := resolveSymlinks(cleaned)
	if r.rootDir != "" && !WithinBase(r.rootDir, resolved) {
		return "", &EscapeError{Path: path, Root: r.rootDir}
	}
	return resolved, nil
}

// WithinBase reports whether path is base itself or inside base's subtree.
func WithinBase(base, path string) bool {
	if base == "" {
		return false
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// resolveSymlinks canonicalizes the longest existing prefix of path. The leaf
// may not exist yet (file_write creates it), so unresolvable suffix segments
// are re-joined verbatim.
func resolveSymlinks(path string) string {
	remainder := ""
	current := path
	for {
		real, err := filepath.EvalSymlinks(current)
		if err == nil {
			if remainder == "" {
				return real
			}
			return filepath.Join(real, remainder)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return path
		}
		if remainder == "" {
			remainder = filepath.Base(current)
		} else {
			remainder = filepath.Join(filepath.Base(current), remainder)
		}
		current = parent
	}
}

func normalizeDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return ""
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return abs
}

func processWorkingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	abs, err := filepath.Abs(filepath.Clean(wd))
	if err != nil {
		return ""
	}
	return abs
}
