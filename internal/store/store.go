// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package store persists request snapshots in a SQL database.
//
// Snapshots record what was sent to the search backend for a query cycle,
// for debugging and replay. The store works with any registered dialect; the
// request itself is kept as an encoded payload.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coregx/searchq/internal/cache"
	"github.com/coregx/searchq/internal/codec"
	"github.com/coregx/searchq/internal/core"
	"github.com/coregx/searchq/internal/dialects"
	"github.com/coregx/searchq/internal/logger"
	"github.com/coregx/searchq/internal/prepare"
)

// DefaultTable is the snapshot table name used when none is configured.
const DefaultTable = "search_snapshots"

// timeFormat has a fixed width so that text columns sort chronologically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

var columns = []string{"id", "created_at", "search_as_you_type", "q", "expression", "format", "payload"}

// Store reads and writes request snapshots.
type Store struct {
	db      *sql.DB
	owned   bool
	dialect dialects.Dialect
	codec   codec.Codec
	table   string
	logger  logger.Logger
	cache   *cache.LRU[uuid.UUID, Snapshot]
	now     func() time.Time

	healthInterval time.Duration
	health         *healthChecker
}

// Option is a functional option for configuring a Store.
type Option func(*Store)

// WithCodec sets the codec new payloads are written with. Existing rows keep
// the format they were written in.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithTable sets the snapshot table name.
func WithTable(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.table = name
		}
	}
}

// WithLogger enables logging of store operations.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCacheCapacity sets how many snapshots Get keeps in memory.
func WithCacheCapacity(n int) Option {
	return func(s *Store) {
		s.cache = cache.New[uuid.UUID, Snapshot](n)
	}
}

// WithHealthCheck pings the database every interval in the background.
// Health reports the latest result. Zero disables the background checks.
func WithHealthCheck(interval time.Duration) Option {
	return func(s *Store) {
		s.healthInterval = interval
	}
}

// Open opens the database and prepares the snapshot table.
// The returned store owns the connection and closes it on Close.
func Open(ctx context.Context, driverName, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, core.WrapError(err, "open "+driverName)
	}

	s, err := New(ctx, db, driverName, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true

	if s.dialect.Name() == "sqlite" {
		// One writer at a time.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	return s, nil
}

// New wraps an existing connection and prepares the snapshot table.
// driverName selects the dialect.
func New(ctx context.Context, db *sql.DB, driverName string, opts ...Option) (*Store, error) {
	dialect, err := dialects.GetDialect(driverName)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:      db,
		dialect: dialect,
		codec:   codec.Msgpack{},
		table:   DefaultTable,
		logger:  &logger.NoopLogger{},
		cache:   cache.New[uuid.UUID, Snapshot](cache.DefaultCapacity),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}

	s.health = newHealthChecker(db, s.logger, s.healthInterval, s.now)
	if s.healthInterval > 0 {
		s.health.start()
	}
	return s, nil
}

// Ping checks the connection now and records the result.
func (s *Store) Ping(ctx context.Context) Health {
	return s.health.check(ctx)
}

// Health returns the result of the latest check. A store never checked is
// reported healthy.
func (s *Store) Health() Health {
	return s.health.status()
}

// Close stops the health checks and releases the connection if the store
// opened it.
func (s *Store) Close() error {
	if s.healthInterval > 0 {
		s.health.shutdown()
	}
	s.cache.Clear()
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the snapshot table and its indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.SnapshotSchema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return core.WrapError(err, "migrate "+s.table)
		}
	}
	return nil
}

// CacheStats returns statistics of the snapshot read cache.
func (s *Store) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Save writes snap, replacing any snapshot with the same ID.
// A zero ID gets a fresh one and a zero CreatedAt the current time.
func (s *Store) Save(ctx context.Context, snap Snapshot) (Snapshot, error) {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = s.now()
	}
	snap.CreatedAt = snap.CreatedAt.UTC()
	snap.Format = s.codec.Name()

	payload, err := s.codec.Marshal(snap.Request)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}

	_, err = s.db.ExecContext(ctx, s.insertSQL(),
		snap.ID.String(),
		snap.CreatedAt.Format(timeFormat),
		boolToInt(snap.SearchAsYouType),
		snap.Q,
		snap.Expression,
		snap.Format,
		payload,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}

	s.cache.Set(snap.ID, snap)
	s.logger.Debug("snapshot saved",
		"id", snap.ID.String(),
		"format", snap.Format,
		"bytes", len(payload),
	)
	return snap, nil
}

// Get returns the snapshot with the given ID, or ErrSnapshotNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	if snap, ok := s.cache.Get(id); ok {
		return &snap, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		s.columnList(), s.dialect.QuoteIdentifier(s.table),
		s.dialect.QuoteIdentifier("id"), s.dialect.Placeholder(1))

	snap, err := s.scan(s.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}

	s.cache.Set(id, snap)
	return &snap, nil
}

// List returns up to limit snapshots, newest first. A limit of zero or less
// returns every snapshot.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC, %s DESC",
		s.columnList(), s.dialect.QuoteIdentifier(s.table),
		s.dialect.QuoteIdentifier("created_at"), s.dialect.QuoteIdentifier("id"))

	var args []any
	if limit > 0 {
		query += " LIMIT " + s.dialect.Placeholder(1)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var result []Snapshot
	for rows.Next() {
		snap, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		result = append(result, snap)
	}
	return result, rows.Err()
}

// Delete removes the snapshot with the given ID, or returns ErrSnapshotNotFound.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		s.dialect.QuoteIdentifier(s.table), s.dialect.QuoteIdentifier("id"), s.dialect.Placeholder(1))

	res, err := s.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	s.cache.Delete(id)

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrSnapshotNotFound, id)
	}
	return nil
}

// Hook returns a phase hook that saves every successful query phase.
// Save errors are logged; they never fail the phase.
func (s *Store) Hook() prepare.PhaseHook {
	return func(ctx context.Context, e prepare.PhaseEvent) {
		if e.Error != nil {
			return
		}
		_, err := s.Save(ctx, Snapshot{
			ID:              e.ID,
			CreatedAt:       e.CreatedAt,
			SearchAsYouType: e.SearchAsYouType,
			Q:               e.Request.Q,
			Expression:      e.Expression.Full,
			Request:         e.Request,
		})
		if err != nil {
			s.logger.Error("snapshot save failed",
				"id", e.ID.String(),
				"error", err,
			)
		}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(row rowScanner) (Snapshot, error) {
	var (
		snap      Snapshot
		id        string
		createdAt string
		sayt      int
		payload   []byte
	)
	if err := row.Scan(&id, &createdAt, &sayt, &snap.Q, &snap.Expression, &snap.Format, &payload); err != nil {
		return Snapshot{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse uuid %q: %w", id, err)
	}
	snap.ID = parsed

	snap.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	snap.SearchAsYouType = sayt != 0

	c, err := codec.ForName(snap.Format)
	if err != nil {
		return Snapshot{}, err
	}
	if err := c.Unmarshal(payload, &snap.Request); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) insertSQL() string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = s.dialect.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)%s",
		s.dialect.QuoteIdentifier(s.table),
		s.columnList(),
		strings.Join(placeholders, ", "),
		s.dialect.UpsertSQL(s.table, columns[:1], columns[1:]),
	)
}

func (s *Store) columnList() string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = s.dialect.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
