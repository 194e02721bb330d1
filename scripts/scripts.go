// Package scripts holds the SQL text for every pipeline step and the helpers
// that prepare it for execution: named placeholder substitution, search_path
// rewrites, the unlogged-table rewrite and statement splitting.
package scripts

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Params maps placeholder names to their values. Placeholders appear in the
// script text as %NAME%.
type Params map[string]string

var placeholderPattern = regexp.MustCompile(`%[A-Z][A-Z0-9_]*%`)

// Prep substitutes every named placeholder in a script. Any placeholder left
// unresolved after substitution is an error - a silent leftover would only
// surface later as a confusing syntax error in the middle of a load.
func Prep(sql string, params Params) (string, error) {
	for name, value := range params {
		sql = strings.ReplaceAll(sql, "%"+name+"%", value)
	}

	if leftover := placeholderPattern.FindString(sql); leftover != "" {
		return "", errors.Errorf("unresolved placeholder %s in SQL script", leftover)
	}

	return sql, nil
}

// SetSearchPath points a script at a target schema by rewriting the default
// search_path header. Scripts deliberately carry no schema prefixes on their
// table names so the same script can run against any schema.
func SetSearchPath(sql, schema string) string {
	return strings.ReplaceAll(sql, "SET search_path = public", "SET search_path = "+schema)
}

// Unlogged rewrites CREATE TABLE to CREATE UNLOGGED TABLE, trading crash
// durability for load speed. Tables have to be rebuilt by a full re-run
// after a server crash.
func Unlogged(sql string) string {
	return strings.ReplaceAll(sql, "CREATE TABLE ", "CREATE UNLOGGED TABLE ")
}

// SplitLines splits a script into one statement per non-comment line, for
// index and key files where each line is an independent statement. Any
// non-comment line is kept regardless of length.
func SplitLines(sql string) []string {
	var stmts []string
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		stmts = append(stmts, trimmed)
	}
	return stmts
}

// statement group marker used inside multi-statement prep scripts
const groupMarker = "-- # --"

// SplitGroups splits a script on the group marker into sets of statements
// that are mutually independent and safe to run in parallel.
func SplitGroups(sql string) []string {
	var groups []string
	for _, group := range strings.Split(sql, groupMarker) {
		group = strings.TrimSpace(group)
		if group != "" {
			groups = append(groups, group)
		}
	}
	return groups
}
