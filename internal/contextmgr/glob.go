package contextmgr

import (
	"path"
	"strings"
)

// globMatch performs a best-effort path-style glob match, treating a
// pattern error as a non-match. "**" matches zero or more path segments;
// everything else is a single path.Match segment comparison.
func globMatch(pattern, value string) bool {
	if pattern == "" || value == "" {
		return false
	}
	if strings.Contains(pattern, "**") {
		return globStarMatch(pattern, value)
	}
	ok, err := path.Match(pattern, value)
	return err == nil && ok
}

func globStarMatch(pattern, value string) bool {
	pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "/"), "/")
	value = strings.TrimSuffix(strings.TrimPrefix(value, "/"), "/")

	pSegs := splitSegments(pattern)
	vSegs := splitSegments(value)

	memo := make(map[[2]int]bool, len(pSegs)*len(vSegs))
	var match func(i, j int) bool
	match = func(i, j int) bool {
		key := [2]int{i, j}
		if v, ok := memo[key]; ok {
			return v
		}
		var ok bool
		switch {
		case i >= len(pSegs):
			ok = j >= len(vSegs)
		case pSegs[i] == "**":
			ok = match(i+1, j) || (j < len(vSegs) && match(i, j+1))
		case j >= len(vSegs):
			ok = false
		default:
			segOK, err := path.Match(pSegs[i], vSegs[j])
			ok = err == nil && segOK && match(i+1, j+1)
		}
		memo[key] = ok
		return ok
	}
	return match(0, 0)
}

func splitSegments(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
