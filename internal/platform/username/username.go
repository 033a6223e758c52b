// Package username holds the one spelling every store and lock key uses for a user.
package username

import "strings"

// Canonical trims raw and folds it to lower case, so "Alice" and "alice "
// name the same account on every database engine.
func Canonical(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
