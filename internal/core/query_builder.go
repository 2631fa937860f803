// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package core provides the expression composition and request assembly engine
// for searchq: expression builders, the shared query builder and the wire request.
package core

// Default values applied by NewQueryBuilder.
const (
	DefaultNumberOfResults = 10
	DefaultSortCriteria    = "relevancy"
)

// MatchAllExpression matches every item in the index. It stands in for an
// override that became empty, since an empty override means "no override".
const MatchAllExpression = "@uri"

// QueryBuilder accumulates the contributions of every component taking part
// in one query cycle, then produces the final Request with Build.
//
// A QueryBuilder is created fresh for each cycle and shared by reference with
// all contributors. It is not safe for concurrent use; contributors run one
// after the other.
type QueryBuilder struct {
	// Expression holds the basic part, typically user-entered keywords (q).
	Expression *ExpressionBuilder
	// AdvancedExpression holds filters from facets and external code (aq).
	AdvancedExpression *ExpressionBuilder
	// ConstantExpression is like AdvancedExpression but cached by the index (cq).
	ConstantExpression *ExpressionBuilder
	// LongQueryExpression holds long contextual text such as a case description (lq).
	LongQueryExpression *ExpressionBuilder
	// DisjunctionExpression is OR'd with the rest: (q aq cq) OR dq.
	DisjunctionExpression *ExpressionBuilder

	SearchHub  string
	Tab        string
	Locale     string
	Pipeline   string
	MaximumAge *int

	EnableWildcards          *bool
	EnableQuestionMarks      *bool
	EnableQuerySyntax        bool
	EnableLowercaseOperators *bool
	EnablePartialMatch       *bool
	PartialMatchKeywords     *int
	PartialMatchThreshold    string

	FirstResult      int
	NumberOfResults  int
	ExcerptLength    *int
	FilterField      string
	FilterFieldRange *int
	ParentField      string
	ChildField       string

	FieldsToInclude       []string
	RequiredFields        []string
	IncludeRequiredFields bool
	FieldsToExclude       []string

	EnableDidYouMean          bool
	EnableDebug               bool
	EnableCollaborativeRating *bool
	SortCriteria              string
	// Deprecated: use SortCriteria.
	SortField              string
	RetrieveFirstSentences bool
	Timezone               string

	QueryFunctions   []QueryFunction
	RankingFunctions []RankingFunction
	GroupByRequests  []GroupByRequest

	EnableDuplicateFiltering bool

	// Context is created on the first AddContextValue or AddContext call.
	Context                     map[string]ContextValue
	ActionsHistory              string
	Recommendation              string
	AllowQueriesWithoutKeywords *bool
}

// NewQueryBuilder creates a query builder with default values, then applies opts.
func NewQueryBuilder(opts ...Option) *QueryBuilder {
	qb := &QueryBuilder{
		Expression:             NewExpressionBuilder(),
		AdvancedExpression:     NewExpressionBuilder(),
		ConstantExpression:     NewExpressionBuilder(),
		LongQueryExpression:    NewExpressionBuilder(),
		DisjunctionExpression:  NewExpressionBuilder(),
		FirstResult:            0,
		NumberOfResults:        DefaultNumberOfResults,
		SortCriteria:           DefaultSortCriteria,
		RetrieveFirstSentences: true,
		RequiredFields:         []string{},
		QueryFunctions:         []QueryFunction{},
		RankingFunctions:       []RankingFunction{},
		GroupByRequests:        []GroupByRequest{},
	}

	for _, opt := range opts {
		opt(qb)
	}

	return qb
}

// Build returns the request for the current state of the builder.
//
// Build can be called any number of times. The returned request does not
// share slices or maps with the builder.
func (qb *QueryBuilder) Build() Request {
	return Request{
		Q:  qb.Expression.Build(),
		AQ: qb.AdvancedExpression.Build(),
		CQ: qb.ConstantExpression.Build(),
		LQ: qb.LongQueryExpression.Build(),
		DQ: qb.DisjunctionExpression.Build(),

		SearchHub:  qb.SearchHub,
		Tab:        qb.Tab,
		Locale:     qb.Locale,
		Pipeline:   qb.Pipeline,
		MaximumAge: qb.MaximumAge,

		Wildcards:             qb.EnableWildcards,
		QuestionMark:          qb.EnableQuestionMarks,
		LowercaseOperators:    qb.EnableLowercaseOperators,
		PartialMatch:          qb.EnablePartialMatch,
		PartialMatchKeywords:  qb.PartialMatchKeywords,
		PartialMatchThreshold: qb.PartialMatchThreshold,

		FirstResult:      qb.FirstResult,
		NumberOfResults:  qb.NumberOfResults,
		ExcerptLength:    qb.ExcerptLength,
		FilterField:      qb.FilterField,
		FilterFieldRange: qb.FilterFieldRange,
		ParentField:      qb.ParentField,
		ChildField:       qb.ChildField,
		FieldsToInclude:  qb.ComputeFieldsToInclude(),
		FieldsToExclude:  copyStrings(qb.FieldsToExclude),
		EnableDidYouMean: qb.EnableDidYouMean,
		SortCriteria:     qb.SortCriteria,
		SortField:        qb.SortField,
		QueryFunctions:   append([]QueryFunction{}, qb.QueryFunctions...),
		RankingFunctions: append([]RankingFunction{}, qb.RankingFunctions...),
		GroupBy:          append([]GroupByRequest{}, qb.GroupByRequests...),

		RetrieveFirstSentences:    qb.RetrieveFirstSentences,
		Timezone:                  qb.Timezone,
		EnableQuerySyntax:         qb.EnableQuerySyntax,
		EnableDuplicateFiltering:  qb.EnableDuplicateFiltering,
		EnableCollaborativeRating: qb.EnableCollaborativeRating,
		Debug:                     qb.EnableDebug,

		Context:                     copyContext(qb.Context),
		ActionsHistory:              qb.ActionsHistory,
		Recommendation:              qb.Recommendation,
		AllowQueriesWithoutKeywords: qb.AllowQueriesWithoutKeywords,
	}
}

// ComputeCompleteExpression returns the basic, advanced, constant and
// disjunction parts combined into one expression.
func (qb *QueryBuilder) ComputeCompleteExpression() string {
	return qb.ComputeCompleteExpressionParts().Full
}

// ComputeCompleteExpressionParts returns the combined expression as its parts.
func (qb *QueryBuilder) ComputeCompleteExpressionParts() QueryBuilderExpression {
	return NewQueryBuilderExpression(
		qb.Expression.Build(),
		qb.AdvancedExpression.Build(),
		qb.ConstantExpression.Build(),
		qb.DisjunctionExpression.Build(),
	)
}

// ComputeCompleteExpressionExcept is ComputeCompleteExpression with the
// fragment except removed from every part.
func (qb *QueryBuilder) ComputeCompleteExpressionExcept(except string) string {
	return qb.ComputeCompleteExpressionPartsExcept(except).Full
}

// ComputeCompleteExpressionPartsExcept returns the combined expression parts
// with the fragment except removed from every part.
//
// The removal works on copies; the builders owned by qb are left untouched.
// Facets use this to count values as if their own filter were not applied.
func (qb *QueryBuilder) ComputeCompleteExpressionPartsExcept(except string) QueryBuilderExpression {
	// Merged basic+advanced view without except. Not returned yet.
	withoutConstantAndExcept := Merge(qb.Expression, qb.AdvancedExpression)
	withoutConstantAndExcept.Remove(except)

	return NewQueryBuilderExpression(
		buildWithout(qb.Expression, except),
		buildWithout(qb.AdvancedExpression, except),
		buildWithout(qb.ConstantExpression, except),
		buildWithout(qb.DisjunctionExpression, except),
	)
}

// GroupByExcept returns a group-by request for field whose counts ignore the
// fragment except. Overrides are only set when removing except changes the
// complete expression. The disjunction override is only set when except
// appears in dq.
func (qb *QueryBuilder) GroupByExcept(field, except string) GroupByRequest {
	req := GroupByRequest{Field: field}
	if qb.ComputeCompleteExpressionExcept(except) == qb.ComputeCompleteExpression() {
		return req
	}

	req.QueryOverride = overrideWithout(qb.Expression, except)
	req.AdvancedQueryOverride = overrideWithout(qb.AdvancedExpression, except)
	req.ConstantQueryOverride = overrideWithout(qb.ConstantExpression, except)
	if dq := buildWithout(qb.DisjunctionExpression, except); dq != qb.DisjunctionExpression.Build() {
		req.DisjunctionQueryOverride = StringPtr(dq)
	}
	return req
}

// AddContextValue sets a single context entry, creating the context if needed.
func (qb *QueryBuilder) AddContextValue(key string, value ContextValue) {
	if qb.Context == nil {
		qb.Context = make(map[string]ContextValue)
	}
	qb.Context[key] = value
}

// AddContext merges values into the context. Existing keys are overwritten.
func (qb *QueryBuilder) AddContext(values map[string]ContextValue) {
	if qb.Context == nil {
		qb.Context = make(map[string]ContextValue, len(values))
	}
	for k, v := range values {
		qb.Context[k] = v
	}
}

// ContainsEndUserKeywords reports whether the basic (q) or long (lq) part
// holds end user input.
func (qb *QueryBuilder) ContainsEndUserKeywords() bool {
	req := qb.Build()
	return !isBlank(req.Q) || !isBlank(req.LQ)
}

func buildWithout(eb *ExpressionBuilder, except string) string {
	clone := NewExpressionBuilder()
	clone.FromExpressionBuilder(eb)
	clone.Remove(except)
	return clone.Build()
}

// overrideWithout returns the part without except, or MatchAllExpression
// when the part only held except.
func overrideWithout(eb *ExpressionBuilder, except string) string {
	built := buildWithout(eb, except)
	if built == "" && !eb.IsEmpty() {
		return MatchAllExpression
	}
	return built
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func copyContext(ctx map[string]ContextValue) map[string]ContextValue {
	if ctx == nil {
		return nil
	}
	out := make(map[string]ContextValue, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
