package obs

import "strings"

// CanonicalPath collapses resource identifiers embedded in request paths so
// metric labels stay low-cardinality.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}

	switch {
	case strings.HasPrefix(path, "/api/conversations/"):
		rest := strings.Trim(strings.TrimPrefix(path, "/api/conversations/"), "/")
		parts := strings.Split(rest, "/")
		switch {
		case len(parts) == 1 && parts[0] != "":
			return "/api/conversations/:id"
		case len(parts) == 2:
			return "/api/conversations/:id/" + parts[1]
		}
	case strings.HasPrefix(path, "/api/admin/users/"):
		rest := strings.Trim(strings.TrimPrefix(path, "/api/admin/users/"), "/")
		if rest != "" && !strings.Contains(rest, "/") {
			return "/api/admin/users/:id"
		}
	}
	return path
}
