// Package validator holds the field predicates used to compute the flag column.
package validator

import (
	"regexp"
	"strings"
)

// Func reports whether a single CSV field satisfies a predicate.
// Implementations must be pure: the transformer may short-circuit.
type Func func(field string) bool

var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// IsEmail reports whether field has the shape local@domain.tld once
// surrounding whitespace is trimmed.
func IsEmail(field string) bool {
	return emailPattern.MatchString(strings.TrimSpace(field))
}
