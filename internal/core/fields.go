// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

// uniqueStrings concatenates the lists and drops repeated values,
// keeping the first occurrence of each.
func uniqueStrings(lists ...[]string) []string {
	size := 0
	for _, l := range lists {
		size += len(l)
	}

	seen := make(map[string]struct{}, size)
	out := make([]string, 0, size)
	for _, l := range lists {
		for _, s := range l {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// AddFieldsToInclude adds fields to return with each result.
// Repeated fields are kept once; the list is created on first use.
func (qb *QueryBuilder) AddFieldsToInclude(fields []string) {
	qb.FieldsToInclude = uniqueStrings(qb.FieldsToInclude, fields)
}

// AddRequiredFields adds fields that are always returned once a projection applies.
func (qb *QueryBuilder) AddRequiredFields(fields []string) {
	qb.RequiredFields = uniqueStrings(qb.RequiredFields, fields)
}

// AddFieldsToExclude sets the fields to strip from each result.
//
// The new list is the current include list followed by fields, with repeats
// removed. The previous exclude list is replaced, not extended.
func (qb *QueryBuilder) AddFieldsToExclude(fields []string) {
	qb.FieldsToExclude = uniqueStrings(qb.FieldsToInclude, fields)
}

// ComputeFieldsToInclude resolves the projection sent with the request.
//
// It returns nil ("return every field") when no include list was set and
// IncludeRequiredFields is false. Otherwise it returns the required fields
// followed by the included ones, each field once.
func (qb *QueryBuilder) ComputeFieldsToInclude() []string {
	if !qb.IncludeRequiredFields && qb.FieldsToInclude == nil {
		return nil
	}
	return uniqueStrings(qb.RequiredFields, qb.FieldsToInclude)
}
