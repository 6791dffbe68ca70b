package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	gitignore "github.com/sabhiram/go-gitignore"

	"warden/internal/pathutil"
)

// FileName is the per-directory rule file consulted by the resolver.
const FileName = ".ignore"

// Resolver emulates cascading, directory-scoped ignore rules on top of a flat
// single-root matcher. Every `.ignore` file between an anchor directory and
// the target's parent contributes rules; each rule is rewritten to be
// relative to the anchor before compilation, so one matcher can evaluate the
// whole chain while deeper rules still override shallower ones (declaration
// order is preserved and the matcher applies last-match-wins semantics).
type Resolver struct {
	mu    sync.RWMutex
	cache map[string]*gitignore.GitIgnore

	// readFile is swappable so tests can count or fail reads.
	readFile func(name string) ([]byte, error)
}

// NewResolver returns a resolver with an empty process-lifetime cache.
// Entries are never invalidated: ignore files are expected to change rarely
// within a single agent session, and a stale rule set costs at most one
// restart.
func NewResolver() *Resolver {
	return &Resolver{
		cache:    make(map[string]*gitignore.GitIgnore),
		readFile: os.ReadFile,
	}
}

// Blocked reports whether absPath is excluded by the ignore policy rooted at
// root. Paths outside root anchor at their filesystem root instead, so the
// policy still applies when no sandbox is enforced for the call.
func (r *Resolver) Blocked(absPath, root string) bool {
	absPath = filepath.Clean(absPath)
	anchor := r.anchorFor(absPath, root)
	if anchor == "" {
		return false
	}

	matcher := r.matcherFor(anchor, filepath.Dir(absPath))
	if matcher == nil {
		return false
	}

	rel, err := filepath.Rel(anchor, absPath)
	if err != nil {
		return false
	}
	return matcher.MatchesPath(filepath.ToSlash(rel))
}

// anchorFor picks the reference directory all rule paths are rewritten into.
func (r *Resolver) anchorFor(absPath, root string) string {
	if root != "" && pathutil.WithinBase(root, absPath) {
		return filepath.Clean(root)
	}
	return filesystemRoot(absPath)
}

// matcherFor returns the compiled rule set for (anchor, dir), building and
// caching it on first use. Concurrent callers may race to build the same
// entry; the builds are deterministic, so last write wins without locking
// around the (idempotent) construction itself.
func (r *Resolver) matcherFor(anchor, dir string) *gitignore.GitIgnore {
	key := anchor + "\x00" + dir

	r.mu.RLock()
	matcher, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return matcher
	}

	matcher = r.build(anchor, dir)

	r.mu.Lock()
	r.cache[key] = matcher
	r.mu.Unlock()
	return matcher
}

// build collects rules from every .ignore file on the anchor→dir chain,
// top-down, and compiles them into one flat matcher.
func (r *Resolver) build(anchor, dir string) *gitignore.GitIgnore {
	chain := directoryChain(anchor, dir)
	if chain == nil {
		return nil
	}

	var rules []string
	for _, d := range chain {
		rules = append(rules, r.rulesFrom(anchor, d)...)
	}
	if len(rules) == 0 {
		return nil
	}
	return gitignore.CompileIgnoreLines(rules...)
}

// rulesFrom reads one directory's .ignore file and rewrites its patterns to
// anchor-relative form. A missing file contributes nothing; so does an
// unreadable one. The sandbox boundary is enforced separately and more
// strictly, so this layer fails open on read errors.
func (r *Resolver) rulesFrom(anchor, dir string) []string {
	data, err := r.readFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil
	}

	prefix := ""
	if rel, err := filepath.Rel(anchor, dir); err == nil && rel != "." {
		prefix = filepath.ToSlash(rel) + "/"
	}

	var rules []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		pattern := trimmed
		negated := strings.HasPrefix(pattern, "!")
		if negated {
			pattern = pattern[1:]
		}
		anchored := strings.HasPrefix(pattern, "/")
		pattern = strings.TrimPrefix(pattern, "/")
		if pattern == "" {
			continue
		}

		// A leading slash pins the pattern to this directory, so the prefixed
		// rule keeps it. Unanchored patterns match at any depth below this
		// directory; the ** bridge preserves that once a prefix is attached.
		// Negation is re-attached after prefixing so a directory-local
		// un-ignore stays scoped to that directory's subtree.
		var rule string
		switch {
		case anchored:
			rule = "/" + prefix + pattern
		case prefix == "":
			rule = pattern
		default:
			rule = prefix + "**/" + pattern
		}
		if negated {
			rule = "!" + rule
		}
		rules = append(rules, rule)
	}
	return rules
}

// directoryChain lists the directories from anchor down to dir, anchor first.
// Returns nil when dir is not under anchor.
func directoryChain(anchor, dir string) []string {
	var chain []string
	current := filepath.Clean(dir)
	for {
		chain = append(chain, current)
		if current == anchor {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			// Hit the filesystem root without meeting the anchor.
			return nil
		}
		current = parent
	}
	// Reverse so ancestor rules come first and deeper rules can override.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// filesystemRoot returns the root directory of absPath's volume.
func filesystemRoot(absPath string) string {
	current := filepath.Clean(absPath)
	for {
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
