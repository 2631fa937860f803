// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/coregx/searchq/internal/logger"
)

const pingTimeout = 5 * time.Second

// Health is the outcome of the latest connection check.
type Health struct {
	Healthy   bool
	Err       error
	CheckedAt time.Time
}

// healthChecker pings the snapshot database at a fixed interval so that a
// dead connection shows up before the next save fails.
type healthChecker struct {
	db       *sql.DB
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu   sync.RWMutex
	last Health
}

func newHealthChecker(db *sql.DB, log logger.Logger, interval time.Duration, now func() time.Time) *healthChecker {
	return &healthChecker{
		db:       db,
		logger:   log,
		interval: interval,
		now:      now,
		stop:     make(chan struct{}),
		last:     Health{Healthy: true},
	}
}

func (h *healthChecker) start() {
	h.wg.Add(1)
	go h.run()
}

func (h *healthChecker) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.check(context.Background())
		case <-h.stop:
			return
		}
	}
}

// check pings once and records the result.
func (h *healthChecker) check(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := h.db.PingContext(ctx)
	result := Health{Healthy: err == nil, Err: err, CheckedAt: h.now()}

	h.mu.Lock()
	h.last = result
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("snapshot store health check failed",
			"error", err,
			"interval", h.interval)
	} else {
		h.logger.Debug("snapshot store health check passed",
			"interval", h.interval)
	}
	return result
}

func (h *healthChecker) shutdown() {
	h.stopOnce.Do(func() { close(h.stop) })
	h.wg.Wait()
}

func (h *healthChecker) status() Health {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}
