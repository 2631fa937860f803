// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package searchq composes search requests from the contributions of
// independent components. Each query cycle gets a fresh QueryBuilder; every
// subscribed contributor adds its expressions, fields and context, and the
// flat Request sent to the search backend is built once at the end.
package searchq

import (
	"github.com/coregx/searchq/internal/core"
	"github.com/coregx/searchq/internal/prepare"
)

type (
	// ExpressionBuilder accumulates expression parts joined with AND.
	ExpressionBuilder = core.ExpressionBuilder
	// QueryBuilder is the shared accumulator of one query cycle.
	QueryBuilder = core.QueryBuilder
	// QueryBuilderExpression is a read-only view over the combined expression.
	QueryBuilderExpression = core.QueryBuilderExpression
	// Option configures a fresh QueryBuilder.
	Option = core.Option
	// Request is the flat request sent to the search backend.
	Request = core.Request
	// ContextValue is a custom context entry: one string or a list.
	ContextValue = core.ContextValue
	// GroupByRequest extracts facet values for a field.
	GroupByRequest = core.GroupByRequest
	// QueryFunction stores a computed value in a result field.
	QueryFunction = core.QueryFunction
	// RankingFunction adjusts result ranking.
	RankingFunction = core.RankingFunction
	// ComputedFieldRequest asks for an aggregate per group-by value.
	ComputedFieldRequest = core.ComputedFieldRequest

	// Pipeline runs the query phase over its contributors.
	Pipeline = prepare.Pipeline
	// PipelineOption configures a Pipeline.
	PipelineOption = prepare.Option
	// Stage of the query phase.
	Stage = prepare.Stage
	// BuildingArgs is handed to every contributor of a phase.
	BuildingArgs = prepare.BuildingArgs
	// Contributor adds its part of a query to the shared builder.
	Contributor = prepare.Contributor
	// ContributorFunc adapts a function to Contributor.
	ContributorFunc = prepare.ContributorFunc
	// Prepared is the outcome of one query phase.
	Prepared = prepare.Prepared
	// PhaseEvent describes a finished phase.
	PhaseEvent = prepare.PhaseEvent
	// PhaseHook is called after each phase.
	PhaseHook = prepare.PhaseHook
)

// Stages in execution order.
const (
	StageBuilding     = prepare.StageBuilding
	StageDoneBuilding = prepare.StageDoneBuilding
)

// Expression constants.
const (
	AndSeparator       = core.AndSeparator
	OrSeparator        = core.OrSeparator
	MatchAllExpression = core.MatchAllExpression
)

// Errors.
var (
	ErrPhaseCanceled      = core.ErrPhaseCanceled
	ErrSnapshotNotFound   = core.ErrSnapshotNotFound
	ErrUnsupportedDialect = core.ErrUnsupportedDialect
	ErrUnknownFormat      = core.ErrUnknownFormat
)

// Re-export core functions.
var (
	NewExpressionBuilder      = core.NewExpressionBuilder
	Merge                     = core.Merge
	MergeUsingOr              = core.MergeUsingOr
	NewQueryBuilder           = core.NewQueryBuilder
	NewQueryBuilderExpression = core.NewQueryBuilderExpression
	ContextString             = core.ContextString
	ContextStrings            = core.ContextStrings

	// Builder options
	WithSearchHub             = core.WithSearchHub
	WithTab                   = core.WithTab
	WithLocale                = core.WithLocale
	WithTimezone              = core.WithTimezone
	WithPipeline              = core.WithPipeline
	WithNumberOfResults       = core.WithNumberOfResults
	WithSortCriteria          = core.WithSortCriteria
	WithRequiredFields        = core.WithRequiredFields
	WithIncludeRequiredFields = core.WithIncludeRequiredFields
	WithContext               = core.WithContext
	WithEnableDidYouMean      = core.WithEnableDidYouMean
	WithEnableQuerySyntax     = core.WithEnableQuerySyntax
	WithEnableDebug           = core.WithEnableDebug

	// Pointer helpers for optional request fields
	StringPtr  = core.StringPtr
	IntPtr     = core.IntPtr
	BoolPtr    = core.BoolPtr
	Float64Ptr = core.Float64Ptr

	// Query phase
	NewPipeline   = prepare.New
	ChainHooks    = prepare.ChainHooks
	WithDefaults  = prepare.WithDefaults
	WithLogger    = prepare.WithLogger
	WithSanitizer = prepare.WithSanitizer
	WithTracer    = prepare.WithTracer
	WithMetrics   = prepare.WithMetrics
	WithPhaseHook = prepare.WithPhaseHook
)
