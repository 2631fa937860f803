package core

import (
	"fmt"
	"testing"
)

func BenchmarkExpressionBuilder_Build(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		eb := NewExpressionBuilder()
		for i := 0; i < n; i++ {
			eb.AddFieldExpression(fmt.Sprintf("@f%d", i), "==", "a", "b c")
		}

		b.Run(fmt.Sprintf("parts=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = eb.Build()
			}
		})
	}
}

func BenchmarkQueryBuilder_GroupByExcept(b *testing.B) {
	qb := NewQueryBuilder()
	qb.Expression.Add("wifi router")
	qb.ConstantExpression.Add("@source==kb")
	for i := 0; i < 10; i++ {
		qb.AdvancedExpression.AddFieldExpression(fmt.Sprintf("@facet%d", i), "==", "x")
	}
	except := `@facet3=="x"`

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = qb.GroupByExcept("@facet3", except)
	}
}

func BenchmarkQueryBuilder_Build(b *testing.B) {
	qb := NewQueryBuilder(WithRequiredFields("@uri", "@title"), WithIncludeRequiredFields(true))
	qb.Expression.Add("wifi")
	qb.AdvancedExpression.Add(`@filetype=="pdf"`)
	qb.AddContextValue("role", ContextString("agent"))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = qb.Build()
	}
}
