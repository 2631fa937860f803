// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/coregx/searchq/internal/core"
)

// ContextEntry is a context value in YAML: a scalar or a sequence of scalars.
type ContextEntry struct {
	Values []string
	List   bool
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (e *ContextEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*e = ContextEntry{Values: []string{node.Value}}
		return nil
	case yaml.SequenceNode:
		values := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: context list items must be scalars", item.Line)
			}
			values = append(values, item.Value)
		}
		*e = ContextEntry{Values: values, List: true}
		return nil
	default:
		return fmt.Errorf("line %d: context value must be a scalar or a list", node.Line)
	}
}

// MarshalYAML writes a single value as a scalar and a list as a sequence.
func (e ContextEntry) MarshalYAML() (interface{}, error) {
	if e.List {
		return e.Values, nil
	}
	if len(e.Values) == 0 {
		return "", nil
	}
	return e.Values[0], nil
}

// Value converts the entry to a context value.
func (e ContextEntry) Value() core.ContextValue {
	if e.List {
		return core.ContextStrings(e.Values...)
	}
	if len(e.Values) == 0 {
		return core.ContextString("")
	}
	return core.ContextString(e.Values[0])
}

func contextValues(entries map[string]ContextEntry) map[string]core.ContextValue {
	out := make(map[string]core.ContextValue, len(entries))
	for k, e := range entries {
		out[k] = e.Value()
	}
	return out
}
