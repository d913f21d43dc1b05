package ports

import (
	"context"

	"godash/domain/core"
	"godash/domain/dashboard"
)

// DashboardRepository defines the interface for dashboard snapshot storage
type DashboardRepository interface {
	// Save persists a snapshot verbatim, including materialized table data
	Save(ctx context.Context, snapshot *dashboard.Snapshot) error

	// GetByID retrieves a single snapshot
	GetByID(ctx context.Context, id core.DashboardID) (*dashboard.Snapshot, error)

	// ListByUser returns a user's snapshots ordered by creation time, newest first
	ListByUser(ctx context.Context, userID core.UserID) ([]*dashboard.Snapshot, error)

	// Delete removes a snapshot owned by userID
	Delete(ctx context.Context, id core.DashboardID, userID core.UserID) error
}
