// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMask replaces sensitive values in log output.
const DefaultMask = "***REDACTED***"

// Sanitizer masks sensitive data before it reaches the logs.
// It detects sensitive context keys and expression fields by name.
type Sanitizer struct {
	sensitiveKeys []string
	maskValue     string
	// Compiled patterns for faster matching
	patterns []*regexp.Regexp
	// fieldValue matches @field==value and @field=value terms in an expression.
	fieldValue *regexp.Regexp
}

// NewSanitizer creates a new sanitizer with the specified sensitive key names.
// If no keys are provided, a default set of common sensitive names is used.
func NewSanitizer(sensitiveKeys []string) *Sanitizer {
	if len(sensitiveKeys) == 0 {
		sensitiveKeys = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "authorization",
			"email", "user_id", "userid", "username",
			"ssn", "phone",
		}
	}

	patterns := make([]*regexp.Regexp, 0, len(sensitiveKeys))
	for _, key := range sensitiveKeys {
		// Key names are matched case-insensitively anywhere in the name,
		// "userEmail" and "x-auth-token" are both sensitive.
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(key)))
	}

	return &Sanitizer{
		sensitiveKeys: sensitiveKeys,
		maskValue:     DefaultMask,
		patterns:      patterns,
		fieldValue:    regexp.MustCompile(`@([A-Za-z0-9_]+)\s*(==|=|<>)\s*("(?:[^"\\]|\\.)*"|\([^)]*\)|[^\s()]+)`),
	}
}

// IsSensitive reports whether a context key or field name looks sensitive.
func (s *Sanitizer) IsSensitive(key string) bool {
	for _, pattern := range s.patterns {
		if pattern.MatchString(key) {
			return true
		}
	}
	return false
}

// MaskContext returns a loggable copy of a request context.
// Values under sensitive keys are replaced by the mask; the input is not modified.
func (s *Sanitizer) MaskContext(ctx map[string][]string) map[string]string {
	if len(ctx) == 0 {
		return nil
	}

	masked := make(map[string]string, len(ctx))
	for key, values := range ctx {
		if s.IsSensitive(key) {
			masked[key] = s.maskValue
			continue
		}
		masked[key] = s.formatValue(strings.Join(values, ","))
	}
	return masked
}

// MaskExpression masks the values of field terms whose field name is sensitive,
// e.g. @email=="john@example.com" becomes @email==***REDACTED***.
func (s *Sanitizer) MaskExpression(expr string) string {
	if expr == "" {
		return expr
	}
	return s.fieldValue.ReplaceAllStringFunc(expr, func(term string) string {
		m := s.fieldValue.FindStringSubmatch(term)
		if !s.IsSensitive(m[1]) {
			return term
		}
		return "@" + m[1] + m[2] + s.maskValue
	})
}

// FormatExpression returns an expression safe for logging: sensitive field
// values are masked and very long expressions are truncated.
func (s *Sanitizer) FormatExpression(expr string) string {
	return s.formatValue(s.MaskExpression(expr))
}

// formatValue formats a single value for logging.
// Truncates very long strings to prevent log pollution.
func (s *Sanitizer) formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}

	str := fmt.Sprintf("%v", v)

	const maxLen = 200
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}

	return str
}
