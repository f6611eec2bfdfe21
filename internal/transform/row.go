// Package transform appends the derived flag column to CSV rows.
package transform

import (
	"strings"
	"unicode"

	"github.com/Harsh-BH/csvflag/internal/validator"
)

// Delimiter separates fields on a line. Quoting is not interpreted: a line is
// split on every comma, the same way it is rejoined on output.
const Delimiter = ","

// RowTransformer appends one boolean field to a row: true when any field
// satisfies the validator.
type RowTransformer struct {
	valid    validator.Func
	trueLit  string
	falseLit string
}

// NewRowTransformer creates a RowTransformer. When uppercase is set the
// flag renders as TRUE/FALSE instead of true/false.
func NewRowTransformer(valid validator.Func, uppercase bool) *RowTransformer {
	t := &RowTransformer{valid: valid, trueLit: "true", falseLit: "false"}
	if uppercase {
		t.trueLit, t.falseLit = "TRUE", "FALSE"
	}
	return t
}

// Flag reports whether any field in the row satisfies the validator.
func (t *RowTransformer) Flag(fields []string) bool {
	for _, f := range fields {
		if t.valid(f) {
			return true
		}
	}
	return false
}

// Literal renders b the way it is written to the flag column.
func (t *RowTransformer) Literal(b bool) string {
	if b {
		return t.trueLit
	}
	return t.falseLit
}

// Transform returns a new row: the input fields unchanged, followed by the flag.
func (t *RowTransformer) Transform(fields []string) []string {
	out := make([]string, 0, len(fields)+1)
	out = append(out, fields...)
	return append(out, t.Literal(t.Flag(fields)))
}

// TransformLine splits line on the delimiter and returns the augmented line.
func (t *RowTransformer) TransformLine(line string) string {
	return strings.Join(t.Transform(strings.Split(line, Delimiter)), Delimiter)
}

// IsBlank reports whether every field of line is empty or whitespace.
func IsBlank(line string) bool {
	return strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	}) == ""
}
