// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"strconv"
	"strings"
)

// Boolean separators used when joining expression parts.
const (
	AndSeparator = " AND "
	OrSeparator  = " OR "
)

// ExpressionBuilder accumulates opaque expression fragments and joins them
// into a single boolean expression.
//
// Fragments are never parsed. Empty or whitespace-only fragments are dropped,
// so a builder only ever holds meaningful parts and never produces a dangling
// operator.
//
// Example:
//
//	eb := searchq.NewExpressionBuilder()
//	eb.Add("@source==web")
//	eb.Add("shoes OR boots")
//	eb.Build() // @source==web AND (shoes OR boots)
type ExpressionBuilder struct {
	parts []string
}

// NewExpressionBuilder creates an empty expression builder.
func NewExpressionBuilder() *ExpressionBuilder {
	return &ExpressionBuilder{}
}

// Add appends a fragment. Empty and whitespace-only values are ignored.
func (eb *ExpressionBuilder) Add(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	eb.parts = append(eb.parts, value)
}

// AddFieldExpression appends a field expression built from quoted values.
//
//	AddFieldExpression("@filetype", "==", "pdf")         // @filetype=="pdf"
//	AddFieldExpression("@filetype", "==", "pdf", "doc")  // @filetype==("pdf","doc")
//
// Nothing is added when values is empty.
func (eb *ExpressionBuilder) AddFieldExpression(field, operator string, values ...string) {
	if len(values) == 0 {
		return
	}
	eb.Add(fieldExpression(field, operator, values))
}

// AddFieldNotEqualExpression appends the negation of an equality field expression.
//
//	AddFieldNotEqualExpression("@author", "bob") // (NOT @author=="bob")
func (eb *ExpressionBuilder) AddFieldNotEqualExpression(field string, values ...string) {
	if len(values) == 0 {
		return
	}
	eb.Add("(NOT " + fieldExpression(field, "==", values) + ")")
}

// Remove removes every part equal to value. The value is trimmed the same
// way Add trims it, so a contributor can remove exactly what it added.
// Removing an absent value is a no-op.
func (eb *ExpressionBuilder) Remove(value string) {
	value = strings.TrimSpace(value)
	kept := eb.parts[:0:0]
	for _, part := range eb.parts {
		if part != value {
			kept = append(kept, part)
		}
	}
	eb.parts = kept
}

// FromExpressionBuilder replaces the parts of eb with a copy of the parts of src.
func (eb *ExpressionBuilder) FromExpressionBuilder(src *ExpressionBuilder) {
	if src == nil {
		eb.parts = nil
		return
	}
	eb.parts = append([]string(nil), src.parts...)
}

// Clone returns an independent copy of eb.
func (eb *ExpressionBuilder) Clone() *ExpressionBuilder {
	clone := NewExpressionBuilder()
	clone.FromExpressionBuilder(eb)
	return clone
}

// Parts returns a copy of the accumulated parts in insertion order.
func (eb *ExpressionBuilder) Parts() []string {
	return append([]string(nil), eb.parts...)
}

// IsEmpty reports whether no part has been added.
func (eb *ExpressionBuilder) IsEmpty() bool {
	return len(eb.parts) == 0
}

// Build joins all parts with AND. An empty builder yields "".
func (eb *ExpressionBuilder) Build() string {
	return eb.BuildWith(AndSeparator)
}

// BuildWith joins all parts with the given separator.
// A single part is returned as-is; with several parts, compound parts
// are wrapped in parentheses for correct precedence.
func (eb *ExpressionBuilder) BuildWith(separator string) string {
	switch len(eb.parts) {
	case 0:
		return ""
	case 1:
		return eb.parts[0]
	}

	grouped := make([]string, len(eb.parts))
	for i, part := range eb.parts {
		if needsGrouping(part) {
			part = "(" + part + ")"
		}
		grouped[i] = part
	}
	return strings.Join(grouped, separator)
}

// Merge returns a new builder holding the parts of every builder, in order.
// Inputs are not modified; nil builders are skipped.
func Merge(builders ...*ExpressionBuilder) *ExpressionBuilder {
	merged := NewExpressionBuilder()
	for _, b := range builders {
		if b == nil {
			continue
		}
		merged.parts = append(merged.parts, b.parts...)
	}
	return merged
}

// MergeUsingOr builds every input and joins the non-empty results with OR.
// The result holds a single part (or none).
func MergeUsingOr(builders ...*ExpressionBuilder) *ExpressionBuilder {
	alternatives := NewExpressionBuilder()
	for _, b := range builders {
		if b == nil {
			continue
		}
		alternatives.Add(b.Build())
	}

	merged := NewExpressionBuilder()
	merged.Add(alternatives.BuildWith(OrSeparator))
	return merged
}

// fieldExpression formats @field<op>"v" or @field<op>("v1","v2").
func fieldExpression(field, operator string, values []string) string {
	if !strings.HasPrefix(field, "@") {
		field = "@" + field
	}
	if len(values) == 1 {
		return field + operator + strconv.Quote(values[0])
	}

	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return field + operator + "(" + strings.Join(quoted, ",") + ")"
}

// needsGrouping reports whether part has whitespace at the top level,
// outside quotes and parentheses. A backslash escapes the next byte inside
// quotes. Unbalanced parts are always grouped.
func needsGrouping(part string) bool {
	depth := 0
	inQuote := false
	escaped := false
	for i := 0; i < len(part); i++ {
		c := part[i]
		switch {
		case escaped:
			escaped = false
		case inQuote && c == '\\':
			escaped = true
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && (c == ' ' || c == '\t' || c == '\n'):
			return true
		}
	}
	return inQuote || depth != 0
}
