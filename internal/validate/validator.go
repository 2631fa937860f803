// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package validate lints built search requests.
//
// The composition engine never rejects input; this package is an optional
// check for callers that want to catch malformed fragments before a request
// is sent.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coregx/searchq/internal/core"
)

// Severity of an issue.
type Severity string

// Issue severities. Warnings only make a request invalid in strict mode.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeUnbalancedParens  = "unbalanced_parentheses"
	CodeUnterminatedQuote = "unterminated_quote"
	CodeDanglingOperator  = "dangling_operator"
	CodeRepeatedOperator  = "repeated_operator"
	CodeEmptyGroup        = "empty_group"
	CodePaging            = "paging"
	CodeGroupByField      = "group_by_field"
)

// DefaultMaxNumberOfResults is the page size limit used when none is configured.
const DefaultMaxNumberOfResults = 1000

// Issue describes one problem found in a request.
type Issue struct {
	// Part is the request field the issue was found in (q, aq, groupBy[0], ...).
	Part     string   `json:"part" yaml:"part"`
	Code     string   `json:"code" yaml:"code"`
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Part, i.Message, i.Severity)
}

// Result is the outcome of a validation.
type Result struct {
	Valid  bool    `json:"valid" yaml:"valid"`
	Issues []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Validator checks requests for malformed expressions and out-of-range paging.
type Validator struct {
	strict             bool
	maxNumberOfResults int
	repeated           *regexp.Regexp
	emptyGroup         *regexp.Regexp
}

// ValidatorOption configures the Validator.
type ValidatorOption func(*Validator)

// WithStrict makes warnings invalidate the request.
func WithStrict(strict bool) ValidatorOption {
	return func(v *Validator) {
		v.strict = strict
	}
}

// WithMaxNumberOfResults sets the largest accepted page size.
func WithMaxNumberOfResults(n int) ValidatorOption {
	return func(v *Validator) {
		v.maxNumberOfResults = n
	}
}

// NewValidator creates a request validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		maxNumberOfResults: DefaultMaxNumberOfResults,
		repeated:           regexp.MustCompile(`\b(AND|OR)\s+(AND|OR)\b`),
		emptyGroup:         regexp.MustCompile(`\(\s*\)`),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate checks every expression part, the paging range and the group-by requests.
func (v *Validator) Validate(req core.Request) Result {
	var issues []Issue

	parts := []struct {
		name string
		expr string
	}{
		{"q", req.Q},
		{"aq", req.AQ},
		{"cq", req.CQ},
		{"lq", req.LQ},
		{"dq", req.DQ},
	}
	for _, p := range parts {
		issues = append(issues, v.ValidateExpression(p.name, p.expr)...)
	}

	if req.FirstResult < 0 {
		issues = append(issues, errorIssue("firstResult", CodePaging,
			fmt.Sprintf("first result %d is negative", req.FirstResult)))
	}
	if req.NumberOfResults < 0 || req.NumberOfResults > v.maxNumberOfResults {
		issues = append(issues, errorIssue("numberOfResults", CodePaging,
			fmt.Sprintf("number of results %d is outside [0, %d]", req.NumberOfResults, v.maxNumberOfResults)))
	}

	for i, gb := range req.GroupBy {
		part := fmt.Sprintf("groupBy[%d]", i)
		if strings.TrimSpace(gb.Field) == "" {
			issues = append(issues, errorIssue(part, CodeGroupByField, "group by field is empty"))
		}
		issues = append(issues, v.ValidateExpression(part+".queryOverride", gb.QueryOverride)...)
		issues = append(issues, v.ValidateExpression(part+".advancedQueryOverride", gb.AdvancedQueryOverride)...)
		issues = append(issues, v.ValidateExpression(part+".constantQueryOverride", gb.ConstantQueryOverride)...)
		if gb.DisjunctionQueryOverride != nil {
			issues = append(issues, v.ValidateExpression(part+".disjunctionQueryOverride", *gb.DisjunctionQueryOverride)...)
		}
	}

	return Result{Valid: v.Valid(issues), Issues: issues}
}

// ValidateExpression checks a single expression. part labels the issues.
func (v *Validator) ValidateExpression(part, expr string) []Issue {
	if strings.TrimSpace(expr) == "" {
		return nil
	}

	var issues []Issue

	depth, inQuote, negative := scan(expr)
	if inQuote {
		issues = append(issues, errorIssue(part, CodeUnterminatedQuote, "expression has an unterminated quote"))
	}
	if depth != 0 || negative {
		issues = append(issues, errorIssue(part, CodeUnbalancedParens, "expression has unbalanced parentheses"))
	}

	// Operator checks only make sense on the unquoted text.
	bare := stripQuoted(expr)

	fields := strings.Fields(bare)
	if len(fields) > 0 {
		first := strings.TrimLeft(fields[0], "(")
		last := strings.TrimRight(fields[len(fields)-1], ")")
		if first == "AND" || first == "OR" {
			issues = append(issues, errorIssue(part, CodeDanglingOperator,
				fmt.Sprintf("expression starts with %s", first)))
		}
		if last == "AND" || last == "OR" || last == "NOT" {
			issues = append(issues, errorIssue(part, CodeDanglingOperator,
				fmt.Sprintf("expression ends with %s", last)))
		}
	}

	if m := v.repeated.FindString(bare); m != "" {
		issues = append(issues, warningIssue(part, CodeRepeatedOperator,
			fmt.Sprintf("repeated operator %q", m)))
	}
	if v.emptyGroup.MatchString(bare) {
		issues = append(issues, warningIssue(part, CodeEmptyGroup, "expression contains an empty group"))
	}

	return issues
}

// Valid reports whether issues leave a request valid under the validator settings.
func (v *Validator) Valid(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError || v.strict {
			return false
		}
	}
	return true
}

// scan walks expr outside of double quotes and returns the final paren depth,
// whether a quote is left open and whether a closing paren ever had no match.
func scan(expr string) (depth int, inQuote, negative bool) {
	escaped := false
	for _, r := range expr {
		switch {
		case escaped:
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				negative = true
			}
		}
	}
	return depth, inQuote, negative
}

// stripQuoted replaces quoted text by an empty pair of quotes.
func stripQuoted(expr string) string {
	var b strings.Builder
	b.Grow(len(expr))

	inQuote, escaped := false, false
	for _, r := range expr {
		switch {
		case escaped:
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case inQuote:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func errorIssue(part, code, msg string) Issue {
	return Issue{Part: part, Code: code, Message: msg, Severity: SeverityError}
}

func warningIssue(part, code, msg string) Issue {
	return Issue{Part: part, Code: code, Message: msg, Severity: SeverityWarning}
}
