// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

// QueryBuilderExpression is a read-only view over the expression parts of a query.
//
// Full is (basic AND advanced AND constant), OR'd with the disjunction when
// one is present. WithoutConstant is the same without the constant part.
type QueryBuilderExpression struct {
	Full            string `json:"full"`
	WithoutConstant string `json:"withoutConstant"`
	Constant        string `json:"constant"`
	Disjunction     string `json:"dq"`
}

// NewQueryBuilderExpression computes the aggregate from already built parts.
// Empty parts are treated as absent.
func NewQueryBuilderExpression(basic, advanced, constant, disjunction string) QueryBuilderExpression {
	withoutConstant := NewExpressionBuilder()
	withoutConstant.Add(basic)
	withoutConstant.Add(advanced)

	full := withoutConstant.Clone()
	full.Add(constant)

	return QueryBuilderExpression{
		Full:            orDisjunction(full, disjunction),
		WithoutConstant: orDisjunction(withoutConstant, disjunction),
		Constant:        constant,
		Disjunction:     disjunction,
	}
}

func orDisjunction(conjunction *ExpressionBuilder, disjunction string) string {
	if isBlank(disjunction) {
		return conjunction.Build()
	}

	either := NewExpressionBuilder()
	either.Add(conjunction.Build())
	either.Add(disjunction)
	return either.BuildWith(OrSeparator)
}
