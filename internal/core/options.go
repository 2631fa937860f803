// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

// Option is a functional option for configuring a QueryBuilder.
type Option func(*QueryBuilder)

// WithSearchHub sets the search hub used for analytics reporting.
func WithSearchHub(hub string) Option {
	return func(qb *QueryBuilder) {
		qb.SearchHub = hub
	}
}

// WithTab sets the tab the query originates from.
func WithTab(tab string) Option {
	return func(qb *QueryBuilder) {
		qb.Tab = tab
	}
}

// WithLocale sets the locale of the end user.
func WithLocale(locale string) Option {
	return func(qb *QueryBuilder) {
		qb.Locale = locale
	}
}

// WithTimezone sets the timezone used to resolve date expressions.
func WithTimezone(tz string) Option {
	return func(qb *QueryBuilder) {
		qb.Timezone = tz
	}
}

// WithPipeline sets the query pipeline to route the query through.
func WithPipeline(pipeline string) Option {
	return func(qb *QueryBuilder) {
		qb.Pipeline = pipeline
	}
}

// WithNumberOfResults sets the page size.
func WithNumberOfResults(n int) Option {
	return func(qb *QueryBuilder) {
		qb.NumberOfResults = n
	}
}

// WithSortCriteria sets the sort criteria (relevancy, datedescending, @field ascending, ...).
func WithSortCriteria(criteria string) Option {
	return func(qb *QueryBuilder) {
		qb.SortCriteria = criteria
	}
}

// WithRequiredFields adds fields that are always part of the projection.
func WithRequiredFields(fields ...string) Option {
	return func(qb *QueryBuilder) {
		qb.AddRequiredFields(fields)
	}
}

// WithIncludeRequiredFields forces a projection made of the required fields
// even when no include list is set.
func WithIncludeRequiredFields(include bool) Option {
	return func(qb *QueryBuilder) {
		qb.IncludeRequiredFields = include
	}
}

// WithContext merges custom context values.
func WithContext(values map[string]ContextValue) Option {
	return func(qb *QueryBuilder) {
		qb.AddContext(values)
	}
}

// WithEnableDidYouMean toggles query corrections.
func WithEnableDidYouMean(enable bool) Option {
	return func(qb *QueryBuilder) {
		qb.EnableDidYouMean = enable
	}
}

// WithEnableQuerySyntax toggles interpretation of special query syntax in q.
func WithEnableQuerySyntax(enable bool) Option {
	return func(qb *QueryBuilder) {
		qb.EnableQuerySyntax = enable
	}
}

// WithEnableDebug asks the backend for execution details.
func WithEnableDebug(enable bool) Option {
	return func(qb *QueryBuilder) {
		qb.EnableDebug = enable
	}
}
