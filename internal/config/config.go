// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads searchq configuration from YAML: builder defaults,
// logging, snapshot storage, validation and the contributors that compose
// a query.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coregx/searchq/internal/audit"
	"github.com/coregx/searchq/internal/codec"
	"github.com/coregx/searchq/internal/core"
	"github.com/coregx/searchq/internal/dialects"
	"github.com/coregx/searchq/internal/validate"
)

// Config represents the complete searchq configuration.
type Config struct {
	Query        QueryConfig         `yaml:"query"`
	Logging      LoggingConfig       `yaml:"logging"`
	Store        StoreConfig         `yaml:"store"`
	Validation   ValidationConfig    `yaml:"validation"`
	Contributors []ContributorConfig `yaml:"contributors,omitempty"`
}

// QueryConfig holds the defaults of every fresh QueryBuilder.
type QueryConfig struct {
	SearchHub       string `yaml:"searchHub"`
	Tab             string `yaml:"tab"`
	Locale          string `yaml:"locale"`
	Timezone        string `yaml:"timezone"`
	Pipeline        string `yaml:"pipeline"`
	NumberOfResults int    `yaml:"numberOfResults"`
	// SortCriteria is relevancy, datedescending, dateascending, @field ascending, ...
	SortCriteria          string                  `yaml:"sortCriteria"`
	RequiredFields        []string                `yaml:"requiredFields,omitempty"`
	IncludeRequiredFields bool                    `yaml:"includeRequiredFields"`
	EnableDidYouMean      bool                    `yaml:"enableDidYouMean"`
	EnableQuerySyntax     bool                    `yaml:"enableQuerySyntax"`
	EnableDebug           bool                    `yaml:"enableDebug"`
	Context               map[string]ContextEntry `yaml:"context,omitempty"`
}

// LoggingConfig selects the log backend.
type LoggingConfig struct {
	// Level is debug, info, warn or error (default: info)
	Level string `yaml:"level"`
	// Format is text or json (default: text)
	Format string `yaml:"format"`
	// Backend is slog or zap (default: slog)
	Backend string `yaml:"backend"`
	// SensitiveKeys replaces the default list of context keys masked in logs
	SensitiveKeys []string `yaml:"sensitiveKeys,omitempty"`
	// Audit is none, requests or all (default: none)
	Audit string `yaml:"audit,omitempty"`
}

// StoreConfig configures request snapshot storage.
type StoreConfig struct {
	// Enabled saves every built request when true
	Enabled bool `yaml:"enabled"`
	// Driver is a database/sql driver name (sqlite, sqlite3, postgres, mysql)
	Driver string `yaml:"driver"`
	// DSN is the driver specific data source name
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
	// Format is the payload codec (json or msgpack)
	Format        string `yaml:"format"`
	CacheCapacity int    `yaml:"cacheCapacity"`
	// HealthCheck is the background ping interval, e.g. 30s (default: off)
	HealthCheck time.Duration `yaml:"healthCheck,omitempty"`
}

// ValidationConfig configures request linting.
type ValidationConfig struct {
	Strict             bool `yaml:"strict"`
	MaxNumberOfResults int  `yaml:"maxNumberOfResults"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Query: QueryConfig{
			NumberOfResults: core.DefaultNumberOfResults,
			SortCriteria:    core.DefaultSortCriteria,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Backend: "slog",
		},
		Store: StoreConfig{
			Enabled: false,
			Driver:  "sqlite",
			DSN:     "searchq.db",
			Table:   "search_snapshots",
			Format:  codec.FormatMsgpack,
		},
		Validation: ValidationConfig{
			MaxNumberOfResults: validate.DefaultMaxNumberOfResults,
		},
	}
}

// Validate checks that the configuration is valid.
// Every problem is reported, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if c.Query.NumberOfResults < 0 {
		errs = append(errs, fmt.Errorf("query.numberOfResults must not be negative"))
	}
	if strings.TrimSpace(c.Query.SortCriteria) == "" {
		errs = append(errs, fmt.Errorf("query.sortCriteria is required"))
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	if c.Logging.Backend != "slog" && c.Logging.Backend != "zap" {
		errs = append(errs, fmt.Errorf("logging.backend must be slog or zap, got %q", c.Logging.Backend))
	}
	if _, err := audit.ParseLevel(c.Logging.Audit); err != nil {
		errs = append(errs, fmt.Errorf("logging.audit: %w", err))
	}

	if _, err := dialects.GetDialect(c.Store.Driver); err != nil {
		errs = append(errs, fmt.Errorf("store.driver: %w", err))
	}
	if _, err := codec.ForName(c.Store.Format); err != nil {
		errs = append(errs, fmt.Errorf("store.format: %w", err))
	}
	if c.Store.HealthCheck < 0 {
		errs = append(errs, fmt.Errorf("store.healthCheck must not be negative"))
	}
	if c.Store.Enabled && c.Store.DSN == "" {
		errs = append(errs, fmt.Errorf("store.dsn is required when the store is enabled"))
	}

	if c.Validation.MaxNumberOfResults <= 0 {
		errs = append(errs, fmt.Errorf("validation.maxNumberOfResults must be positive"))
	}

	for i, cc := range c.Contributors {
		if err := cc.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("contributors[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// BuilderOptions returns the QueryBuilder options described by the query section.
func (c *Config) BuilderOptions() []core.Option {
	q := c.Query
	opts := []core.Option{
		core.WithNumberOfResults(q.NumberOfResults),
		core.WithSortCriteria(q.SortCriteria),
		core.WithIncludeRequiredFields(q.IncludeRequiredFields),
		core.WithEnableDidYouMean(q.EnableDidYouMean),
		core.WithEnableQuerySyntax(q.EnableQuerySyntax),
		core.WithEnableDebug(q.EnableDebug),
	}

	if q.SearchHub != "" {
		opts = append(opts, core.WithSearchHub(q.SearchHub))
	}
	if q.Tab != "" {
		opts = append(opts, core.WithTab(q.Tab))
	}
	if q.Locale != "" {
		opts = append(opts, core.WithLocale(q.Locale))
	}
	if q.Timezone != "" {
		opts = append(opts, core.WithTimezone(q.Timezone))
	}
	if q.Pipeline != "" {
		opts = append(opts, core.WithPipeline(q.Pipeline))
	}
	if len(q.RequiredFields) > 0 {
		opts = append(opts, core.WithRequiredFields(q.RequiredFields...))
	}
	if len(q.Context) > 0 {
		opts = append(opts, core.WithContext(contextValues(q.Context)))
	}

	return opts
}

// ValidatorOptions returns the request validator options.
func (c *Config) ValidatorOptions() []validate.ValidatorOption {
	return []validate.ValidatorOption{
		validate.WithStrict(c.Validation.Strict),
		validate.WithMaxNumberOfResults(c.Validation.MaxNumberOfResults),
	}
}

// LoadFromFile loads configuration from a YAML file on top of DefaultConfig.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration on top of DefaultConfig.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
