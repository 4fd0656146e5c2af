package mysql

import "strings"

// likePattern wraps s for a substring LIKE match, escaping wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// pageOrDefault clamps limit to 1..100 (default 20) and offset to >= 0
func pageOrDefault(limit, offset int) (uint64, uint64) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}
