// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package codec encodes requests and expressions for the wire and for storage.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/coregx/searchq/internal/core"
)

// Format names.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Codec encodes and decodes values in one wire format.
type Codec interface {
	// Name returns the format name used in configuration and storage.
	Name() string
	// ContentType returns the MIME type of the encoded form.
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var registry = map[string]Codec{
	FormatJSON:    JSON{},
	FormatMsgpack: Msgpack{},
}

// ForName returns the codec registered under name. Names are case-insensitive.
func ForName(name string) (Codec, error) {
	c, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", core.ErrUnknownFormat, name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names returns the registered format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JSON is the wire format expected by the search backend.
type JSON struct {
	// Indent pretty-prints the output with the given indentation when set.
	Indent string
}

// Name returns "json".
func (JSON) Name() string { return FormatJSON }

// ContentType returns "application/json".
func (JSON) ContentType() string { return "application/json" }

// Marshal encodes v as JSON without escaping HTML characters, so
// expressions such as @date>=today keep their operators readable.
func (c JSON) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if c.Indent != "" {
		enc.SetIndent("", c.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal decodes JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// Msgpack is a compact binary format used for stored snapshots.
// Field names follow the JSON tags so both formats share one schema.
type Msgpack struct{}

// Name returns "msgpack".
func (Msgpack) Name() string { return FormatMsgpack }

// ContentType returns "application/msgpack".
func (Msgpack) ContentType() string { return "application/msgpack" }

// Marshal encodes v as msgpack.
func (Msgpack) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode msgpack: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes msgpack data into v.
func (Msgpack) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode msgpack: %w", err)
	}
	return nil
}
