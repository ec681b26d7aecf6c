// Package utils holds small query-parsing helpers shared by the handlers.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
//
//	utils.AtoiDefault("42", 0) // 42
//	utils.AtoiDefault("x", 5)  // 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampLimit parses a ?limit= value. Missing or unparsable values yield def;
// the result is then bounded to [1, max]. A max <= 0 means unbounded.
func ClampLimit(s string, def, max int) int {
	n := AtoiDefault(strings.TrimSpace(s), def)
	if n < 1 {
		n = 1
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
