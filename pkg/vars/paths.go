package vars

import (
	"strconv"
	"strings"
)

type (
	// segment is one structured step of a variable path: either a field
	// lookup or an array index.
	segment struct {
		field   string
		index   int
		isIndex bool
	}
)

// Navigate resolves path structurally against an arbitrary value, using the
// same permissive segment walk Context.Get uses below the root. Used by the
// template renderer for loop-relative lookups.
func Navigate(value any, path string) (any, bool) {
	segs, ok := parsePath(path)
	if !ok {
		return nil, false
	}
	current := value
	for _, seg := range segs {
		current, ok = navigate(current, seg)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// splitPath breaks a path into its raw parts, each prefixed with the
// delimiter that introduced it ('.' or '['). The first part has no prefix.
func splitPath(path string) []string {
	var parts []string
	var delim string
	for path != "" {
		partIdx := strings.IndexAny(path, ".[")
		var part string
		if partIdx == -1 {
			part = delim + path
			path = ""
		} else {
			part = delim + path[:partIdx]
			delim = path[partIdx : partIdx+1]
			path = path[partIdx+1:]
		}
		parts = append(parts, part)
	}
	return parts
}

// parsePath turns a dot/bracket path into structured segments.
// Returns ok=false for anything malformed (empty fields, non-numeric or
// unterminated indexes); callers treat that as a lookup miss, not an error.
func parsePath(path string) ([]segment, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}
	segs := make([]segment, 0, len(parts))
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, "."):
			field := part[1:]
			if field == "" {
				return nil, false
			}
			segs = append(segs, segment{field: field})
		case strings.HasPrefix(part, "["):
			if len(part) < 2 || part[len(part)-1] != ']' {
				return nil, false
			}
			idx, err := strconv.Atoi(part[1 : len(part)-1])
			if err != nil || idx < 0 {
				return nil, false
			}
			segs = append(segs, segment{index: idx, isIndex: true})
		default:
			if i != 0 {
				return nil, false
			}
			// a leading index ("[0].name") yields an empty first part
			if part == "" {
				continue
			}
			segs = append(segs, segment{field: part})
		}
	}
	return segs, true
}
