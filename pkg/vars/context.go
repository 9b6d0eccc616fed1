package vars

import (
	"sort"
	"strconv"
)

type (
	// Context is the variable space templates render against: a flat mapping
	// from path strings (e.g. "resources[0].cloud_provider.name") to values.
	//
	// Values are the generic JSON-style union: nil, bool, numbers, string,
	// []any and map[string]any. Composite values are dual-indexed — inserting
	// an object or array at path P also inserts every reachable leaf under P
	// at its full path, so callers can fetch the whole subtree or any leaf
	// directly.
	//
	// A Context is mutable while it is being built and must be treated as
	// read-only once rendering starts.
	Context struct {
		variables map[string]any
	}

	// Entry is one (path, value) pair from Context.ListAll.
	Entry struct {
		Path  string
		Value any
	}

	// WarnFunc receives non-fatal diagnostics (override and overwrite
	// warnings). It is the only side channel the pipeline writes to.
	WarnFunc func(format string, args ...any)
)

func NewContext() *Context {
	return &Context{variables: make(map[string]any)}
}

// Insert stores value at path, overwriting any previous value.
func (c *Context) Insert(path string, value any) {
	c.variables[path] = value
}

// Has reports whether path has an exact entry in the store.
func (c *Context) Has(path string) bool {
	_, ok := c.variables[path]
	return ok
}

// Get resolves path to a value. It first tries an exact key match, then
// falls back to structural navigation: the first segment (optionally with an
// "[N]" index suffix) is resolved against the root mapping and the remaining
// segments walk nested maps and arrays. Missing fields, malformed indexes and
// out-of-range indexes all yield (nil, false) — never an error.
func (c *Context) Get(path string) (any, bool) {
	if v, ok := c.variables[path]; ok {
		return v, true
	}

	segs, ok := parsePath(path)
	if !ok || len(segs) == 0 || segs[0].isIndex {
		return nil, false
	}

	current, ok := c.variables[segs[0].field]
	if !ok {
		return nil, false
	}
	for _, seg := range segs[1:] {
		current, ok = navigate(current, seg)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// navigate applies a single path segment to a value. A numeric field over an
// array indexes it, so "resources.0.name" and "resources[0].name" are
// equivalent.
func navigate(value any, seg segment) (any, bool) {
	if seg.isIndex {
		arr, ok := value.([]any)
		if !ok || seg.index >= len(arr) {
			return nil, false
		}
		return arr[seg.index], true
	}
	switch v := value.(type) {
	case map[string]any:
		val, ok := v[seg.field]
		return val, ok
	case []any:
		idx, err := strconv.Atoi(seg.field)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	}
	return nil, false
}

// ListAll returns every entry in the store, sorted by path for deterministic
// enumeration. Used by the list-variables command and by suggestion
// diagnostics.
func (c *Context) ListAll() []Entry {
	entries := make([]Entry, 0, len(c.variables))
	for path, value := range c.variables {
		entries = append(entries, Entry{Path: path, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

func (c *Context) Len() int {
	return len(c.variables)
}

// Paths returns the sorted path set, without values.
func (c *Context) Paths() []string {
	paths := make([]string, 0, len(c.variables))
	for path := range c.variables {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
