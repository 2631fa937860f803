// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ContextValue is a custom context entry: either one string or a list of strings.
type ContextValue struct {
	values []string
	list   bool
}

// ContextString creates a single-string context value.
func ContextString(value string) ContextValue {
	return ContextValue{values: []string{value}}
}

// ContextStrings creates a list context value. The list may be empty.
func ContextStrings(values ...string) ContextValue {
	return ContextValue{values: append([]string{}, values...), list: true}
}

// IsList reports whether the value holds a list of strings.
func (v ContextValue) IsList() bool {
	return v.list
}

// Values returns the held strings. A single value yields a one-element slice.
func (v ContextValue) Values() []string {
	return append([]string{}, v.values...)
}

// String returns the single value, or the list joined with commas.
func (v ContextValue) String() string {
	return strings.Join(v.values, ",")
}

// MarshalJSON encodes a single value as a JSON string and a list as an array.
func (v ContextValue) MarshalJSON() ([]byte, error) {
	if v.list {
		return json.Marshal(v.Values())
	}
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts a JSON string or an array of strings.
// JSON null is rejected.
func (v *ContextValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("context value must be a string or an array of strings, got null")
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = ContextString(single)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("context value must be a string or an array of strings: %w", err)
	}
	*v = ContextStrings(list...)
	return nil
}

// EncodeMsgpack mirrors MarshalJSON for the msgpack codec.
func (v ContextValue) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !v.list {
		return enc.EncodeString(v.String())
	}
	if err := enc.EncodeArrayLen(len(v.values)); err != nil {
		return err
	}
	for _, s := range v.values {
		if err := enc.EncodeString(s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack accepts a msgpack string or an array of strings.
func (v *ContextValue) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeInterface()
	if err != nil {
		return err
	}

	switch val := raw.(type) {
	case string:
		*v = ContextString(val)
	case []interface{}:
		list := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("context value list item %d is %T, want string", i, item)
			}
			list[i] = s
		}
		*v = ContextStrings(list...)
	default:
		return fmt.Errorf("context value is %T, want string or []string", raw)
	}
	return nil
}
