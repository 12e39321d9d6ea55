package web

import (
	"net/http"
	"strconv"
)

// QueryIntDefault reads an integer query parameter, falling back to def when
// the key is absent or unparseable and flooring the result at min. The
// dashboard clamps paging inputs instead of rejecting them.
func QueryIntDefault(r *http.Request, key string, def, min int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if value < min {
		return min
	}
	return value
}
