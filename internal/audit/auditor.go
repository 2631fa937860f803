// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package audit records who ran which query phase.
//
// Audit events carry the caller identity taken from the context, the phase
// outcome and a hash of the request context. Context values are never logged
// in clear.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/coregx/searchq/internal/core"
	"github.com/coregx/searchq/internal/logger"
	"github.com/coregx/searchq/internal/prepare"
	"github.com/coregx/searchq/internal/validate"
)

// Level defines which query phases are audited.
type Level int

const (
	// LevelNone disables audit logging.
	LevelNone Level = iota
	// LevelRequests audits regular query phases only.
	LevelRequests
	// LevelAll also audits search-as-you-type phases.
	LevelAll
)

// ParseLevel parses none, requests or all.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return LevelNone, nil
	case "requests":
		return LevelRequests, nil
	case "all":
		return LevelAll, nil
	default:
		return LevelNone, fmt.Errorf("unknown audit level %q (want none, requests or all)", s)
	}
}

// Event is one audited query phase.
type Event struct {
	Timestamp       time.Time `json:"timestamp"`
	User            string    `json:"user,omitempty"`
	ClientIP        string    `json:"client_ip,omitempty"`
	RequestID       string    `json:"request_id,omitempty"`
	PhaseID         string    `json:"phase_id"`
	SearchAsYouType bool      `json:"search_as_you_type"`
	Contributors    int       `json:"contributors"`
	// Expression is the complete expression with sensitive field values masked.
	Expression  string `json:"expression,omitempty"`
	ContextHash string `json:"context_hash,omitempty"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Duration    int64  `json:"duration_ms"`
}

// Auditor writes audit events to a logger.
type Auditor struct {
	logger    logger.Logger
	sanitizer *logger.Sanitizer
	level     Level
	now       func() time.Time
}

// NewAuditor creates an auditor. A nil sanitizer uses the default key list.
func NewAuditor(log logger.Logger, sanitizer *logger.Sanitizer, level Level) *Auditor {
	if sanitizer == nil {
		sanitizer = logger.NewSanitizer(nil)
	}
	return &Auditor{
		logger:    log,
		sanitizer: sanitizer,
		level:     level,
		now:       time.Now,
	}
}

// Hook returns the phase hook that audits each phase.
func (a *Auditor) Hook() prepare.PhaseHook {
	return a.LogPhase
}

// LogPhase audits a finished query phase.
func (a *Auditor) LogPhase(ctx context.Context, e prepare.PhaseEvent) {
	if !a.shouldLog(e.SearchAsYouType) {
		return
	}

	event := a.newEvent(ctx)
	event.PhaseID = e.ID.String()
	event.SearchAsYouType = e.SearchAsYouType
	event.Contributors = e.Contributors
	event.Duration = e.Duration.Milliseconds()
	event.Success = e.Error == nil
	if e.Error != nil {
		event.Error = e.Error.Error()
	} else {
		event.Expression = a.sanitizer.MaskExpression(e.Expression.Full)
		event.ContextHash = hashContext(e.Request.Context)
	}

	a.logEvent(event)
}

// LogValidation records a request that failed validation.
func (a *Auditor) LogValidation(ctx context.Context, phaseID string, result validate.Result) {
	if a.logger == nil || a.level == LevelNone || result.Valid {
		return
	}

	event := a.newEvent(ctx)
	codes := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		codes = append(codes, issue.Part+":"+issue.Code)
	}

	a.logger.Warn("security_event",
		"event_type", "invalid_request",
		"timestamp", event.Timestamp,
		"user", event.User,
		"client_ip", event.ClientIP,
		"request_id", event.RequestID,
		"phase_id", phaseID,
		"issues", strings.Join(codes, ","),
	)
}

func (a *Auditor) shouldLog(searchAsYouType bool) bool {
	if a.logger == nil {
		return false
	}

	switch a.level {
	case LevelRequests:
		return !searchAsYouType
	case LevelAll:
		return true
	default:
		return false
	}
}

func (a *Auditor) newEvent(ctx context.Context) Event {
	return Event{
		Timestamp: a.now().UTC(),
		User:      User(ctx),
		ClientIP:  ClientIP(ctx),
		RequestID: RequestID(ctx),
	}
}

func (a *Auditor) logEvent(event Event) {
	log := a.logger.Info
	if !event.Success {
		log = a.logger.Warn
	}

	log("audit_event",
		"timestamp", event.Timestamp,
		"user", event.User,
		"client_ip", event.ClientIP,
		"request_id", event.RequestID,
		"phase_id", event.PhaseID,
		"search_as_you_type", event.SearchAsYouType,
		"contributors", event.Contributors,
		"expression", event.Expression,
		"context_hash", event.ContextHash,
		"success", event.Success,
		"error", event.Error,
		"duration_ms", event.Duration,
	)
}

// hashContext returns a SHA256 of the context entries in key order, or "" for
// an empty context. It tells identical contexts apart without logging them.
func hashContext(values map[string]core.ContextValue) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		v := values[k]
		_, _ = fmt.Fprintf(h, "%s=%t:%q;", k, v.IsList(), v.Values())
	}
	return hex.EncodeToString(h.Sum(nil))
}

type contextKey string

const (
	userKey      contextKey = "searchq:user"
	clientIPKey  contextKey = "searchq:client_ip"
	requestIDKey contextKey = "searchq:request_id"
)

// WithUser adds the caller identity to the context for audit logging.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// WithClientIP adds the client IP to the context for audit logging.
func WithClientIP(ctx context.Context, clientIP string) context.Context {
	return context.WithValue(ctx, clientIPKey, clientIP)
}

// WithRequestID adds a request ID to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// User returns the caller identity stored in ctx.
func User(ctx context.Context) string {
	user, _ := ctx.Value(userKey).(string)
	return user
}

// ClientIP returns the client IP stored in ctx.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// RequestID returns the request ID stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
