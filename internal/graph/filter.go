package graph

import (
	"fmt"
	"regexp"
	"strings"
)

var eqFilterPattern = regexp.MustCompile(`^\s*([A-Za-z0-9_@.]+)\s+eq\s+'((?:[^']|'')*)'\s*$`)

// EqFilter builds an OData "field eq 'value'" expression.
func EqFilter(field, value string) string {
	return fmt.Sprintf("%s eq '%s'", field, strings.ReplaceAll(value, "'", "''"))
}

// ParseEqFilter parses the expressions produced by EqFilter.
func ParseEqFilter(expr string) (field, value string, ok bool) {
	m := eqFilterPattern.FindStringSubmatch(expr)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.ReplaceAll(m[2], "''", "'"), true
}

// MatchesFilter reports whether obj satisfies a filter built by EqFilter.
// An empty filter matches everything.
func MatchesFilter(obj map[string]any, expr string) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}
	field, value, ok := ParseEqFilter(expr)
	if !ok {
		return false
	}
	got, _ := obj[field].(string)
	return got == value
}
