// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

// Request is the flat search request sent to the backend search service.
// JSON field names are the wire contract and must not change.
type Request struct {
	Q  string `json:"q"`
	AQ string `json:"aq"`
	CQ string `json:"cq"`
	LQ string `json:"lq"`
	DQ string `json:"dq"`

	SearchHub  string `json:"searchHub,omitempty"`
	Tab        string `json:"tab,omitempty"`
	Locale     string `json:"locale,omitempty"`
	Pipeline   string `json:"pipeline,omitempty"`
	MaximumAge *int   `json:"maximumAge,omitempty"`

	Wildcards             *bool  `json:"wildcards,omitempty"`
	QuestionMark          *bool  `json:"questionMark,omitempty"`
	LowercaseOperators    *bool  `json:"lowercaseOperators,omitempty"`
	PartialMatch          *bool  `json:"partialMatch,omitempty"`
	PartialMatchKeywords  *int   `json:"partialMatchKeywords,omitempty"`
	PartialMatchThreshold string `json:"partialMatchThreshold,omitempty"`

	FirstResult      int    `json:"firstResult"`
	NumberOfResults  int    `json:"numberOfResults"`
	ExcerptLength    *int   `json:"excerptLength,omitempty"`
	FilterField      string `json:"filterField,omitempty"`
	FilterFieldRange *int   `json:"filterFieldRange,omitempty"`
	ParentField      string `json:"parentField,omitempty"`
	ChildField       string `json:"childField,omitempty"`

	// FieldsToInclude is nil when every field should be returned.
	FieldsToInclude []string `json:"fieldsToInclude"`
	FieldsToExclude []string `json:"fieldsToExclude,omitempty"`

	EnableDidYouMean bool   `json:"enableDidYouMean"`
	SortCriteria     string `json:"sortCriteria"`
	// Deprecated: use SortCriteria.
	SortField string `json:"sortField,omitempty"`

	QueryFunctions   []QueryFunction   `json:"queryFunctions"`
	RankingFunctions []RankingFunction `json:"rankingFunctions"`
	GroupBy          []GroupByRequest  `json:"groupBy"`

	RetrieveFirstSentences    bool   `json:"retrieveFirstSentences"`
	Timezone                  string `json:"timezone,omitempty"`
	EnableQuerySyntax         bool   `json:"enableQuerySyntax"`
	EnableDuplicateFiltering  bool   `json:"enableDuplicateFiltering"`
	EnableCollaborativeRating *bool  `json:"enableCollaborativeRating,omitempty"`
	Debug                     bool   `json:"debug"`

	Context                     map[string]ContextValue `json:"context,omitempty"`
	ActionsHistory              string                  `json:"actionsHistory,omitempty"`
	Recommendation              string                  `json:"recommendation,omitempty"`
	AllowQueriesWithoutKeywords *bool                   `json:"allowQueriesWithoutKeywords,omitempty"`
}

// QueryFunction computes a value for each result and stores it in a field.
type QueryFunction struct {
	Function  string `json:"function"`
	FieldName string `json:"fieldName"`
}

// RankingFunction adjusts result ranking with a numeric expression.
type RankingFunction struct {
	Expression      string   `json:"expression"`
	NormalizeWeight bool     `json:"normalizeWeight"`
	Modifier        *float64 `json:"modifier,omitempty"`
}

// ComputedFieldRequest asks for an aggregate computed over each group-by value.
type ComputedFieldRequest struct {
	Field     string `json:"field"`
	Operation string `json:"operation"`
}

// GroupByRequest extracts facet values for a field.
// The override expressions replace the query expression for this group-by only.
type GroupByRequest struct {
	Field                    string                 `json:"field"`
	LookupField              string                 `json:"lookupField,omitempty"`
	SortCriteria             string                 `json:"sortCriteria,omitempty"`
	MaximumNumberOfValues    int                    `json:"maximumNumberOfValues,omitempty"`
	InjectionDepth           int                    `json:"injectionDepth,omitempty"`
	QueryOverride            string                 `json:"queryOverride,omitempty"`
	AdvancedQueryOverride    string                 `json:"advancedQueryOverride,omitempty"`
	ConstantQueryOverride    string                 `json:"constantQueryOverride,omitempty"`
	// DisjunctionQueryOverride is nil to keep dq; an empty string drops it.
	DisjunctionQueryOverride *string                `json:"disjunctionQueryOverride,omitempty"`
	AllowedValues            []string               `json:"allowedValues,omitempty"`
	ComputedFields           []ComputedFieldRequest `json:"computedFields,omitempty"`
}
