// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryBuilder_Defaults(t *testing.T) {
	qb := NewQueryBuilder()
	req := qb.Build()

	assert.Equal(t, 0, req.FirstResult)
	assert.Equal(t, 10, req.NumberOfResults)
	assert.Equal(t, "relevancy", req.SortCriteria)
	assert.True(t, req.RetrieveFirstSentences)
	assert.False(t, req.EnableDidYouMean)
	assert.False(t, req.Debug)
	assert.False(t, req.EnableDuplicateFiltering)
	assert.False(t, req.EnableQuerySyntax)
	assert.False(t, qb.IncludeRequiredFields)
	assert.Equal(t, []string{}, qb.RequiredFields)
	assert.Nil(t, req.FieldsToInclude)
	assert.Nil(t, req.Context)
	assert.Equal(t, "", req.Q)
	assert.Equal(t, "", req.AQ)
	assert.Equal(t, "", req.CQ)
	assert.Equal(t, "", req.LQ)
	assert.Equal(t, "", req.DQ)
}

func TestNewQueryBuilder_Options(t *testing.T) {
	qb := NewQueryBuilder(
		WithSearchHub("support"),
		WithTab("All"),
		WithLocale("en"),
		WithTimezone("Europe/Paris"),
		WithPipeline("agents"),
		WithNumberOfResults(25),
		WithSortCriteria("datedescending"),
		WithRequiredFields("@uri", "@title", "@uri"),
		WithIncludeRequiredFields(true),
		WithContext(map[string]ContextValue{"role": ContextString("agent")}),
		WithEnableDidYouMean(true),
		WithEnableQuerySyntax(true),
		WithEnableDebug(true),
	)
	req := qb.Build()

	assert.Equal(t, "support", req.SearchHub)
	assert.Equal(t, "All", req.Tab)
	assert.Equal(t, "en", req.Locale)
	assert.Equal(t, "Europe/Paris", req.Timezone)
	assert.Equal(t, "agents", req.Pipeline)
	assert.Equal(t, 25, req.NumberOfResults)
	assert.Equal(t, "datedescending", req.SortCriteria)
	assert.Equal(t, []string{"@uri", "@title"}, req.FieldsToInclude)
	assert.Equal(t, ContextString("agent"), req.Context["role"])
	assert.True(t, req.EnableDidYouMean)
	assert.True(t, req.EnableQuerySyntax)
	assert.True(t, req.Debug)
}

func TestQueryBuilder_BuildMapsExpressions(t *testing.T) {
	qb := NewQueryBuilder()
	qb.Expression.Add("shoes")
	qb.AdvancedExpression.Add("@brand==acme")
	qb.ConstantExpression.Add("@lang==en")
	qb.LongQueryExpression.Add("my shoes are broken")
	qb.DisjunctionExpression.Add("@featured==true")

	req := qb.Build()

	assert.Equal(t, "shoes", req.Q)
	assert.Equal(t, "@brand==acme", req.AQ)
	assert.Equal(t, "@lang==en", req.CQ)
	assert.Equal(t, "my shoes are broken", req.LQ)
	assert.Equal(t, "@featured==true", req.DQ)
}

func TestQueryBuilder_BuildIsIdempotent(t *testing.T) {
	qb := NewQueryBuilder()
	qb.Expression.Add("a")
	qb.AddFieldsToInclude([]string{"f1"})
	qb.AddContextValue("k", ContextStrings("v1", "v2"))
	qb.GroupByRequests = append(qb.GroupByRequests, GroupByRequest{Field: "@brand"})

	first := qb.Build()
	second := qb.Build()

	if diff := cmp.Diff(first, second, cmp.AllowUnexported(ContextValue{})); diff != "" {
		t.Errorf("Build() not idempotent (-first +second):\n%s", diff)
	}
}

func TestQueryBuilder_BuildDoesNotAlias(t *testing.T) {
	qb := NewQueryBuilder()
	qb.AddFieldsToInclude([]string{"f1"})
	qb.AddFieldsToExclude([]string{"f2"})
	qb.AddContextValue("k", ContextString("v"))

	req := qb.Build()
	req.FieldsToInclude[0] = "changed"
	req.FieldsToExclude[0] = "changed"
	req.Context["k"] = ContextString("changed")

	assert.Equal(t, []string{"f1"}, qb.FieldsToInclude)
	assert.Equal(t, []string{"f1", "f2"}, qb.FieldsToExclude)
	assert.Equal(t, ContextString("v"), qb.Context["k"])
}

func TestQueryBuilder_BuildRecomputesFields(t *testing.T) {
	qb := NewQueryBuilder()
	assert.Nil(t, qb.Build().FieldsToInclude)

	qb.AddRequiredFields([]string{"@uri"})
	assert.Nil(t, qb.Build().FieldsToInclude, "required fields alone do not restrict the projection")

	qb.AddFieldsToInclude([]string{"@title"})
	assert.Equal(t, []string{"@uri", "@title"}, qb.Build().FieldsToInclude)

	qb.AddRequiredFields([]string{"@date"})
	assert.Equal(t, []string{"@uri", "@date", "@title"}, qb.Build().FieldsToInclude)
}

func TestQueryBuilder_ComputeCompleteExpressionParts(t *testing.T) {
	tests := []struct {
		name        string
		basic       string
		advanced    string
		constant    string
		disjunction string
		want        QueryBuilderExpression
	}{
		{
			name:     "basic and advanced",
			basic:    "a",
			advanced: "b",
			want: QueryBuilderExpression{
				Full:            "a AND b",
				WithoutConstant: "a AND b",
				Constant:        "",
			},
		},
		{
			name:        "disjunction with basic",
			basic:       "a",
			disjunction: "c",
			want: QueryBuilderExpression{
				Full:            "a OR c",
				WithoutConstant: "a OR c",
				Disjunction:     "c",
			},
		},
		{
			name:        "all parts",
			basic:       "a",
			advanced:    "b",
			constant:    "k",
			disjunction: "c",
			want: QueryBuilderExpression{
				Full:            "(a AND b AND k) OR c",
				WithoutConstant: "(a AND b) OR c",
				Constant:        "k",
				Disjunction:     "c",
			},
		},
		{
			name:     "constant only",
			constant: "k",
			want: QueryBuilderExpression{
				Full:            "k",
				WithoutConstant: "",
				Constant:        "k",
			},
		},
		{
			name:        "disjunction only",
			disjunction: "c",
			want: QueryBuilderExpression{
				Full:            "c",
				WithoutConstant: "c",
				Disjunction:     "c",
			},
		},
		{
			name: "nothing",
			want: QueryBuilderExpression{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qb := NewQueryBuilder()
			qb.Expression.Add(tt.basic)
			qb.AdvancedExpression.Add(tt.advanced)
			qb.ConstantExpression.Add(tt.constant)
			qb.DisjunctionExpression.Add(tt.disjunction)

			assert.Equal(t, tt.want, qb.ComputeCompleteExpressionParts())
			assert.Equal(t, tt.want.Full, qb.ComputeCompleteExpression())
		})
	}
}

func TestQueryBuilder_ComputeCompleteExpressionPartsExcept(t *testing.T) {
	qb := NewQueryBuilder()
	qb.Expression.Add("shoes")
	qb.AdvancedExpression.Add("@brand==acme")
	qb.AdvancedExpression.Add("@color==red")
	qb.ConstantExpression.Add("@lang==en")
	qb.DisjunctionExpression.Add("@featured==true")

	before := qb.Build()
	parts := qb.ComputeCompleteExpressionPartsExcept("@color==red")

	assert.Equal(t, QueryBuilderExpression{
		Full:            "(shoes AND @brand==acme AND @lang==en) OR @featured==true",
		WithoutConstant: "(shoes AND @brand==acme) OR @featured==true",
		Constant:        "@lang==en",
		Disjunction:     "@featured==true",
	}, parts)

	assert.Equal(t, before, qb.Build(), "owned builders must not be mutated")
	assert.Contains(t, qb.Build().AQ, "@color==red")
	assert.Equal(t, parts.Full, qb.ComputeCompleteExpressionExcept("@color==red"))
}

func TestQueryBuilder_ComputeCompleteExpressionExcept_EveryPart(t *testing.T) {
	qb := NewQueryBuilder()
	for _, eb := range []*ExpressionBuilder{qb.Expression, qb.AdvancedExpression, qb.ConstantExpression, qb.DisjunctionExpression} {
		eb.Add("x")
	}
	qb.AdvancedExpression.Add("y")

	assert.Equal(t, "y", qb.ComputeCompleteExpressionExcept("x"))
	assert.Equal(t, "(x AND (x AND y) AND x) OR x", qb.ComputeCompleteExpression())
}

func TestQueryBuilder_ComputeCompleteExpressionExcept_Absent(t *testing.T) {
	qb := NewQueryBuilder()
	qb.Expression.Add("a")
	qb.AdvancedExpression.Add("b")

	assert.Equal(t, qb.ComputeCompleteExpression(), qb.ComputeCompleteExpressionExcept("zzz"))
}

func TestQueryBuilder_GroupByExcept(t *testing.T) {
	t.Run("overrides when the fragment is present", func(t *testing.T) {
		qb := NewQueryBuilder()
		qb.Expression.Add("shoes")
		qb.AdvancedExpression.Add("@brand==acme")
		qb.ConstantExpression.Add("@lang==en")

		req := qb.GroupByExcept("@brand", "@brand==acme")

		assert.Equal(t, GroupByRequest{
			Field:                 "@brand",
			QueryOverride:         "shoes",
			AdvancedQueryOverride: MatchAllExpression,
			ConstantQueryOverride: "@lang==en",
		}, req)
	})

	t.Run("no override when nothing changes", func(t *testing.T) {
		qb := NewQueryBuilder()
		qb.Expression.Add("shoes")

		assert.Equal(t, GroupByRequest{Field: "@brand"}, qb.GroupByExcept("@brand", "@brand==acme"))
	})

	t.Run("fragment only in the disjunction", func(t *testing.T) {
		qb := NewQueryBuilder()
		qb.Expression.Add("shoes")
		qb.DisjunctionExpression.Add("@featured==true")
		qb.DisjunctionExpression.Add("@brand==acme")

		req := qb.GroupByExcept("@brand", "@brand==acme")

		assert.Equal(t, GroupByRequest{
			Field:                    "@brand",
			QueryOverride:            "shoes",
			DisjunctionQueryOverride: StringPtr("@featured==true"),
		}, req)
		assert.Equal(t, []string{"@featured==true", "@brand==acme"}, qb.DisjunctionExpression.Parts())
	})

	t.Run("disjunction holding only the fragment is dropped", func(t *testing.T) {
		qb := NewQueryBuilder()
		qb.Expression.Add("shoes")
		qb.DisjunctionExpression.Add("@brand==acme")

		req := qb.GroupByExcept("@brand", "@brand==acme")

		require.NotNil(t, req.DisjunctionQueryOverride)
		assert.Empty(t, *req.DisjunctionQueryOverride)
	})

	t.Run("untouched disjunction keeps no override", func(t *testing.T) {
		qb := NewQueryBuilder()
		qb.AdvancedExpression.Add("@brand==acme")
		qb.DisjunctionExpression.Add("@featured==true")

		req := qb.GroupByExcept("@brand", "@brand==acme")

		assert.Equal(t, MatchAllExpression, req.AdvancedQueryOverride)
		assert.Nil(t, req.DisjunctionQueryOverride)
	})
}

func TestQueryBuilder_Context(t *testing.T) {
	qb := NewQueryBuilder()
	assert.Nil(t, qb.Context)

	qb.AddContextValue("role", ContextString("agent"))
	require.NotNil(t, qb.Context)
	assert.Equal(t, ContextString("agent"), qb.Context["role"])

	qb.AddContext(map[string]ContextValue{
		"role":   ContextString("admin"),
		"groups": ContextStrings("a", "b"),
	})
	assert.Equal(t, ContextString("admin"), qb.Context["role"], "later values overwrite")
	assert.Equal(t, ContextStrings("a", "b"), qb.Context["groups"])

	fresh := NewQueryBuilder()
	fresh.AddContext(map[string]ContextValue{"k": ContextString("v")})
	assert.Len(t, fresh.Context, 1)
}

func TestQueryBuilder_ContainsEndUserKeywords(t *testing.T) {
	tests := []struct {
		name     string
		basic    string
		long     string
		advanced string
		want     bool
	}{
		{name: "nothing", want: false},
		{name: "blank values", basic: "   ", long: "\t", want: false},
		{name: "advanced only", advanced: "@brand==acme", want: false},
		{name: "basic keywords", basic: "shoes", want: true},
		{name: "long query", long: "my shoes are broken", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qb := NewQueryBuilder()
			qb.Expression.Add(tt.basic)
			qb.LongQueryExpression.Add(tt.long)
			qb.AdvancedExpression.Add(tt.advanced)
			assert.Equal(t, tt.want, qb.ContainsEndUserKeywords())
		})
	}
}

func TestRequest_JSONWireNames(t *testing.T) {
	qb := NewQueryBuilder(WithSearchHub("support"))
	qb.Expression.Add("shoes")
	qb.EnableWildcards = BoolPtr(true)
	qb.MaximumAge = IntPtr(60000)
	qb.AddContextValue("groups", ContextStrings("a", "b"))

	data, err := json.Marshal(qb.Build())
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))

	for _, key := range []string{
		"q", "aq", "cq", "lq", "dq", "searchHub", "maximumAge", "wildcards",
		"firstResult", "numberOfResults", "fieldsToInclude", "enableDidYouMean",
		"sortCriteria", "queryFunctions", "rankingFunctions", "groupBy",
		"retrieveFirstSentences", "enableQuerySyntax", "enableDuplicateFiltering",
		"debug", "context",
	} {
		assert.Contains(t, wire, key)
	}

	assert.Equal(t, "shoes", wire["q"])
	assert.Nil(t, wire["fieldsToInclude"], "unrestricted projection is sent as null")
	assert.Equal(t, true, wire["wildcards"])
	assert.Equal(t, []interface{}{"a", "b"}, wire["context"].(map[string]interface{})["groups"])
	assert.NotContains(t, wire, "questionMark")
	assert.NotContains(t, wire, "fieldsToExclude")
	assert.NotContains(t, wire, "tab")
}
