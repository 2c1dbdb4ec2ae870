package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

var searchSanitizer = regexp.MustCompile(`[^a-zA-Z0-9 \-_]`)

// pathID parses the {id} path segment. Returns 0 and writes nothing when the
// value is missing or not a positive integer; callers respond 400 themselves.
func pathID(r *http.Request) uint {
	v := r.PathValue("id")
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return uint(n)
}

// pagination reads limit/page query params with the defaults used across all
// list endpoints.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

// searchLike turns the q query param into a safe lowercase LIKE pattern,
// or "" when absent. Very basic allowlist: alnum, dash, underscore, space.
func searchLike(r *http.Request) string {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		return ""
	}
	safe := searchSanitizer.ReplaceAllString(q, "")
	return "%" + strings.ToLower(safe) + "%"
}

func wantsJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.Form.Get(key))
	return n
}

func formUint(r *http.Request, key string) uint {
	n := formInt(r, key)
	if n < 0 {
		return 0
	}
	return uint(n)
}
