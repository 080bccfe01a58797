// Package session keeps the per-user context used to fill in omitted fields:
// the last recorded set and the actions that already got the first-set hint.
// Context is a hint only; storage stays authoritative.
package session

import (
	"context"

	"github.com/claude/gymchat/internal/models"
)

// Store is a keyed session context store. Implementations must be safe for
// concurrent use by different users.
type Store interface {
	// Get returns the last record for userID, or nil when there is none.
	Get(ctx context.Context, userID string) (*models.Record, error)
	// Set replaces the last record for userID.
	Set(ctx context.Context, userID string, rec models.Record) error
	// Clear drops the last record for userID.
	Clear(ctx context.Context, userID string) error
	// MarkHinted records that action has been hinted for userID and reports
	// whether this is the first time.
	MarkHinted(ctx context.Context, userID, action string) (bool, error)
	// Reset drops all context for userID, starting a new session.
	Reset(ctx context.Context, userID string) error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
)
