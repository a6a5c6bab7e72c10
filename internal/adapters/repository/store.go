// Package repository defines the durable event store interface and its
// SQLite implementation. Persistence is replace-all per match: writing the
// same event list twice is a no-op, which is what lets the save pipeline
// run with at-least-once semantics.
package repository

import (
	"context"

	"github.com/okian/sideout/internal/domain/model"
)

// Store provides durable read/write access to match event logs.
type Store interface {
	// ReplaceEvents writes the full event list for a match, replacing any
	// previously stored list. Idempotent with respect to replay.
	ReplaceEvents(ctx context.Context, matchID string, events []model.Event) error

	// LoadEvents returns the stored event list for a match in append order.
	// Returns ErrNotFound if the match is unknown.
	LoadEvents(ctx context.Context, matchID string) ([]model.Event, error)

	// MatchIDs lists the matches with stored events.
	MatchIDs(ctx context.Context) ([]string, error)

	// Close releases the underlying store.
	Close() error
}
