package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SplitPath turns "users/u1/referrals" into its segments. Leading and trailing
// slashes are ignored; the root path "" yields no segments.
func SplitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}
	segs := strings.Split(trimmed, "/")
	for _, s := range segs {
		if s == "" || strings.ContainsAny(s, ".#$[]") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

// JoinPath builds a path from segments.
func JoinPath(segs ...string) string {
	return strings.Join(segs, "/")
}

type pathValue struct {
	segs  []string
	value any
}

// prepareUpdate parses and normalizes an update mapping and enforces the
// no-overlap rule.
func prepareUpdate(values map[string]any) ([]pathValue, error) {
	out := make([]pathValue, 0, len(values))
	seen := make(map[string]bool, len(values))
	for path, v := range values {
		segs, err := SplitPath(path)
		if err != nil {
			return nil, err
		}
		if len(segs) == 0 {
			return nil, fmt.Errorf("%w: cannot update the root", ErrInvalidPath)
		}
		key := JoinPath(segs...)
		if seen[key] {
			return nil, fmt.Errorf("%w: %q given twice", ErrOverlappingPaths, key)
		}
		seen[key] = true
		norm, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("store: value at %q: %w", key, err)
		}
		out = append(out, pathValue{segs: segs, value: norm})
	}
	for _, pv := range out {
		for i := 1; i < len(pv.segs); i++ {
			if prefix := JoinPath(pv.segs[:i]...); seen[prefix] {
				return nil, fmt.Errorf("%w: %q is an ancestor of %q", ErrOverlappingPaths, prefix, JoinPath(pv.segs...))
			}
		}
	}
	return out, nil
}

// Normalize converts any JSON-encodable value into plain JSON types.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return pruneEmpty(out), nil
}

// pruneEmpty drops nil members and empty objects, the way the document tree
// never stores them.
func pruneEmpty(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, child := range m {
		child = pruneEmpty(child)
		if child == nil {
			delete(m, k)
			continue
		}
		m[k] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func valueAt(root any, segs []string) any {
	cur := root
	for _, s := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[s]
	}
	return cur
}

// setAt writes value below root and returns the new root. Deleting the last
// member of an object removes the object as well.
func setAt(root any, segs []string, value any) any {
	if len(segs) == 0 {
		return value
	}
	m, ok := root.(map[string]any)
	if !ok {
		if value == nil {
			return root
		}
		m = make(map[string]any)
	}
	child := setAt(m[segs[0]], segs[1:], value)
	if child == nil {
		delete(m, segs[0])
	} else {
		m[segs[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = cloneValue(child)
		}
		return out
	}
	return v
}

// related reports whether one path is equal to or nested under the other.
func related(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
