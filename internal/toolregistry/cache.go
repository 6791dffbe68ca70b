package toolregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"warden/internal/agent/ports"
)

const (
	defaultCacheMaxSize = 256
	defaultCacheTTL     = 5 * time.Minute
)

// CacheConfig configures the tool result cache behaviour.
type CacheConfig struct {
	// MaxSize is the maximum number of entries in the LRU cache.
	MaxSize int
	// TTL is how long a cached result remains valid.
	TTL time.Duration
	// ExcludeTools lists tool names that should never be cached.
	ExcludeTools []string
}

// DefaultCacheConfig returns sensible defaults: mutating file tools are never
// cached.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize:      defaultCacheMaxSize,
		TTL:          defaultCacheTTL,
		ExcludeTools: []string{"file_write", "file_edit"},
	}
}

type cacheEntry struct {
	content  []ports.ContentBlock
	metadata map[string]any
	storedAt time.Time
}

// cacheExecutor is a ToolExecutor wrapper that caches tool results keyed by
// (tool name + normalised arguments). It sits in the executor decorator chain
// like the guard itself.
type cacheExecutor struct {
	delegate     ports.ToolExecutor
	cache        *lru.Cache[string, cacheEntry]
	ttl          time.Duration
	excludeTools map[string]bool
}

// NewCacheExecutor wraps delegate with an LRU result cache.
// Zero config values fall back to DefaultCacheConfig defaults.
func NewCacheExecutor(delegate ports.ToolExecutor, config CacheConfig) ports.ToolExecutor {
	if delegate == nil {
		return nil
	}
	if config.MaxSize <= 0 {
		config.MaxSize = defaultCacheMaxSize
	}
	if config.TTL <= 0 {
		config.TTL = defaultCacheTTL
	}
	cache, err := lru.New[string, cacheEntry](config.MaxSize)
	if err != nil {
		// lru.New only errors on non-positive size which we guard above.
		return delegate
	}
	exclude := make(map[string]bool, len(config.ExcludeTools))
	for _, name := range config.ExcludeTools {
		exclude[strings.TrimSpace(name)] = true
	}
	return &cacheExecutor{
		delegate:     delegate,
		cache:        cache,
		ttl:          config.TTL,
		excludeTools: exclude,
	}
}

func (c *cacheExecutor) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	if c.shouldSkip(call) {
		return c.delegate.Execute(ctx, call)
	}

	key := c.cacheKey(call)

	if entry, ok := c.cache.Get(key); ok {
		if time.Since(entry.storedAt) < c.ttl {
			// Cache hit: return a copy stamped with the current call's ID.
			res := &ports.ToolResult{CallID: call.ID, Content: entry.content, Metadata: entry.metadata}
			return ports.CloneResult(res), nil
		}
		// Expired: evict so the LRU bookkeeping stays clean.
		c.cache.Remove(key)
	}

	result, err := c.delegate.Execute(ctx, call)
	if err != nil {
		return result, err
	}
	// Do not cache error results.
	if result != nil && result.Error == nil {
		stored := ports.CloneResult(result)
		c.cache.Add(key, cacheEntry{
			content:  stored.Content,
			metadata: stored.Metadata,
			storedAt: time.Now(),
		})
	}
	return result, nil
}

func (c *cacheExecutor) Definition() ports.ToolDefinition {
	return c.delegate.Definition()
}

func (c *cacheExecutor) Metadata() ports.ToolMetadata {
	return c.delegate.Metadata()
}

// shouldSkip returns true when caching must be bypassed for this call.
func (c *cacheExecutor) shouldSkip(call ports.ToolCall) bool {
	name := strings.TrimSpace(call.Name)
	if name == "" {
		name = strings.TrimSpace(c.delegate.Metadata().Name)
	}
	if c.excludeTools[name] {
		return true
	}
	return c.delegate.Metadata().Dangerous
}

// cacheKey produces a deterministic string key from tool name + arguments.
func (c *cacheExecutor) cacheKey(call ports.ToolCall) string {
	name := strings.TrimSpace(call.Name)
	if name == "" {
		name = strings.TrimSpace(c.delegate.Metadata().Name)
	}
	return fmt.Sprintf("%s:%s", name, normalizeArgs(call.Arguments))
}

// normalizeArgs serialises a map[string]any into a deterministic JSON string.
// json.Marshal sorts top-level keys; nested maps are converted so their keys
// sort too.
func normalizeArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(sortedMap(args))
	if err != nil {
		return "{}"
	}
	return string(data)
}

func sortedMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if nested, ok := m[k].(map[string]any); ok {
			out[k] = sortedMap(nested)
			continue
		}
		out[k] = m[k]
	}
	return out
}
