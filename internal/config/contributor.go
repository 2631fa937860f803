// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/coregx/searchq/internal/core"
	"github.com/coregx/searchq/internal/prepare"
)

// Expression part names.
const (
	PartBasic       = "q"
	PartAdvanced    = "aq"
	PartConstant    = "cq"
	PartLong        = "lq"
	PartDisjunction = "dq"
)

// ContributorConfig declares one contributor of the composition file.
//
//	contributors:
//	  - name: searchbox
//	    part: q
//	    expressions: ["shoes"]
//	  - name: filetype
//	    facet:
//	      field: "@filetype"
//	      values: ["pdf"]
type ContributorConfig struct {
	Name string `yaml:"name"`
	// Stage is building (default) or doneBuilding
	Stage string `yaml:"stage,omitempty"`
	// Part selects the expression the expressions and field go to (default: aq)
	Part        string       `yaml:"part,omitempty"`
	Expressions []string     `yaml:"expressions,omitempty"`
	Field       *FieldConfig `yaml:"field,omitempty"`
	// Facet adds its selected values to aq while building, then a group-by
	// request that ignores that selection once building is done.
	Facet           *FacetConfig            `yaml:"facet,omitempty"`
	FieldsToInclude []string                `yaml:"fieldsToInclude,omitempty"`
	FieldsToExclude []string                `yaml:"fieldsToExclude,omitempty"`
	Context         map[string]ContextEntry `yaml:"context,omitempty"`
	// SearchAsYouType limits the contributor to suggestion cycles (true),
	// regular cycles (false) or both (unset).
	SearchAsYouType *bool `yaml:"searchAsYouType,omitempty"`
}

// FieldConfig is a field expression such as @filetype==("pdf","doc").
type FieldConfig struct {
	Name     string   `yaml:"name"`
	Operator string   `yaml:"operator,omitempty"`
	Values   []string `yaml:"values"`
	Negate   bool     `yaml:"negate,omitempty"`
}

// FacetConfig is a field facet with its selected values.
type FacetConfig struct {
	Field    string   `yaml:"field"`
	Values   []string `yaml:"values,omitempty"`
	MaxCount int      `yaml:"maxCount,omitempty"`
	SortBy   string   `yaml:"sortBy,omitempty"`
}

// Validate checks a single contributor declaration.
func (c ContributorConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	switch prepare.Stage(c.Stage) {
	case "", prepare.StageBuilding, prepare.StageDoneBuilding:
	default:
		return fmt.Errorf("%s: stage must be %s or %s, got %q", c.Name, prepare.StageBuilding, prepare.StageDoneBuilding, c.Stage)
	}
	switch c.Part {
	case "", PartBasic, PartAdvanced, PartConstant, PartLong, PartDisjunction:
	default:
		return fmt.Errorf("%s: part must be one of q, aq, cq, lq, dq, got %q", c.Name, c.Part)
	}
	if c.Field != nil && strings.TrimSpace(c.Field.Name) == "" {
		return fmt.Errorf("%s: field.name is required", c.Name)
	}
	if c.Facet != nil {
		if strings.TrimSpace(c.Facet.Field) == "" {
			return fmt.Errorf("%s: facet.field is required", c.Name)
		}
		if c.Stage != "" {
			return fmt.Errorf("%s: a facet runs in both stages and takes no stage", c.Name)
		}
	}
	return nil
}

// Register subscribes the contributor to p.
func (c ContributorConfig) Register(p *prepare.Pipeline) {
	if c.Facet != nil {
		p.OnBuilding(c.Name, c.guard(c.contributeFacetFilter))
		p.OnDoneBuilding(c.Name, c.guard(c.contributeFacetGroupBy))
		if !c.hasParts() {
			return
		}
	}

	stage := prepare.Stage(c.Stage)
	if stage == "" {
		stage = prepare.StageBuilding
	}
	p.Subscribe(stage, c.Name, prepare.ContributorFunc(c.guard(c.contribute)))
}

func (c ContributorConfig) hasParts() bool {
	return len(c.Expressions) > 0 || c.Field != nil || len(c.FieldsToInclude) > 0 ||
		len(c.FieldsToExclude) > 0 || len(c.Context) > 0
}

func (c ContributorConfig) guard(f func(context.Context, *prepare.BuildingArgs)) func(context.Context, *prepare.BuildingArgs) {
	if c.SearchAsYouType == nil {
		return f
	}
	want := *c.SearchAsYouType
	return func(ctx context.Context, args *prepare.BuildingArgs) {
		if args.SearchAsYouType == want {
			f(ctx, args)
		}
	}
}

func (c ContributorConfig) contribute(_ context.Context, args *prepare.BuildingArgs) {
	qb := args.Builder
	eb := c.target(qb)

	for _, expr := range c.Expressions {
		eb.Add(expr)
	}
	if f := c.Field; f != nil {
		op := f.Operator
		if op == "" {
			op = "=="
		}
		if f.Negate {
			eb.AddFieldNotEqualExpression(f.Name, f.Values...)
		} else {
			eb.AddFieldExpression(f.Name, op, f.Values...)
		}
	}
	if len(c.FieldsToInclude) > 0 {
		qb.AddFieldsToInclude(c.FieldsToInclude)
	}
	if len(c.FieldsToExclude) > 0 {
		qb.AddFieldsToExclude(c.FieldsToExclude)
	}
	if len(c.Context) > 0 {
		qb.AddContext(contextValues(c.Context))
	}
}

func (c ContributorConfig) contributeFacetFilter(_ context.Context, args *prepare.BuildingArgs) {
	if len(c.Facet.Values) == 0 {
		return
	}
	args.Builder.AdvancedExpression.AddFieldExpression(c.Facet.Field, "==", c.Facet.Values...)
}

func (c ContributorConfig) contributeFacetGroupBy(_ context.Context, args *prepare.BuildingArgs) {
	qb := args.Builder

	gb := core.GroupByRequest{Field: c.Facet.Field}
	if len(c.Facet.Values) > 0 {
		gb = qb.GroupByExcept(c.Facet.Field, c.FacetExpression())
	}
	gb.MaximumNumberOfValues = c.Facet.MaxCount
	gb.SortCriteria = c.Facet.SortBy

	qb.GroupByRequests = append(qb.GroupByRequests, gb)
}

// FacetExpression returns the filter a facet adds for its selected values,
// or "" when nothing is selected.
func (c ContributorConfig) FacetExpression() string {
	if c.Facet == nil || len(c.Facet.Values) == 0 {
		return ""
	}
	eb := core.NewExpressionBuilder()
	eb.AddFieldExpression(c.Facet.Field, "==", c.Facet.Values...)
	return eb.Build()
}

func (c ContributorConfig) target(qb *core.QueryBuilder) *core.ExpressionBuilder {
	switch c.Part {
	case PartBasic:
		return qb.Expression
	case PartConstant:
		return qb.ConstantExpression
	case PartLong:
		return qb.LongQueryExpression
	case PartDisjunction:
		return qb.DisjunctionExpression
	default:
		return qb.AdvancedExpression
	}
}

// Pipeline returns a pipeline with the query defaults and every contributor
// of the configuration, registered in file order.
func (c *Config) Pipeline(opts ...prepare.Option) *prepare.Pipeline {
	opts = append([]prepare.Option{prepare.WithDefaults(c.BuilderOptions()...)}, opts...)
	p := prepare.New(opts...)
	c.Register(p)
	return p
}

// Register subscribes every contributor of the configuration to p.
func (c *Config) Register(p *prepare.Pipeline) {
	for _, cc := range c.Contributors {
		cc.Register(p)
	}
}
