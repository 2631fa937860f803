// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/coregx/searchq/internal/core"
	"github.com/coregx/searchq/internal/prepare"
)

// Snapshot is a stored copy of a built request.
type Snapshot struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	SearchAsYouType bool
	// Q and Expression are kept in plain columns for listing; the full
	// request lives in the encoded payload.
	Q          string
	Expression string
	// Format is the codec the payload was written with.
	Format  string
	Request core.Request
}

// FromPrepared returns the snapshot of a finished query phase.
func FromPrepared(p *prepare.Prepared) Snapshot {
	return Snapshot{
		ID:              p.ID,
		CreatedAt:       p.CreatedAt,
		SearchAsYouType: p.SearchAsYouType,
		Q:               p.Request.Q,
		Expression:      p.Expression.Full,
		Request:         p.Request,
	}
}
