package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"godash/domain/core"
	"godash/domain/dashboard"
	"godash/ports"
)

// dashboardRepository implements the DashboardRepository interface
type dashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates a new dashboard snapshot repository
func NewDashboardRepository(db *sqlx.DB) ports.DashboardRepository {
	return &dashboardRepository{db: db}
}

// Save persists a snapshot. The config is stored as JSONB verbatim, including
// materialized table data, so a saved dashboard renders without recomputing
// anything.
func (r *dashboardRepository) Save(ctx context.Context, snapshot *dashboard.Snapshot) error {
	configJSON, err := json.Marshal(snapshot.Config)
	if err != nil {
		return core.NewPersistenceError("marshal dashboard config", err)
	}
	columnsJSON, err := json.Marshal(snapshot.DatasetColumns)
	if err != nil {
		return core.NewPersistenceError("marshal dataset columns", err)
	}

	query := `INSERT INTO dashboards (
		id, user_id, title, dataset_name, dataset_columns, config, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		snapshot.ID.String(), snapshot.UserID.String(), snapshot.Title,
		snapshot.DatasetName, columnsJSON, configJSON, snapshot.CreatedAt,
	)
	if err != nil {
		return core.NewPersistenceError("save dashboard", err)
	}

	return nil
}

// GetByID retrieves a single snapshot by its ID
func (r *dashboardRepository) GetByID(ctx context.Context, id core.DashboardID) (*dashboard.Snapshot, error) {
	query := `SELECT id, user_id, title, dataset_name, dataset_columns, config, created_at
	FROM dashboards WHERE id = $1`

	snap, err := scanSnapshot(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrDashboardNotFound
		}
		return nil, core.NewPersistenceError("get dashboard", err)
	}

	return snap, nil
}

// ListByUser returns a user's snapshots ordered by creation time, newest first
func (r *dashboardRepository) ListByUser(ctx context.Context, userID core.UserID) ([]*dashboard.Snapshot, error) {
	query := `SELECT id, user_id, title, dataset_name, dataset_columns, config, created_at
	FROM dashboards
	WHERE user_id = $1
	ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, core.NewPersistenceError("list dashboards", err)
	}
	defer rows.Close()

	var snapshots []*dashboard.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, core.NewPersistenceError("scan dashboard", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewPersistenceError("list dashboards", err)
	}

	return snapshots, nil
}

// Delete removes a snapshot owned by userID. Deleting someone else's
// dashboard is indistinguishable from deleting a missing one.
func (r *dashboardRepository) Delete(ctx context.Context, id core.DashboardID, userID core.UserID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM dashboards
		WHERE id = $1 AND user_id = $2
	`, id.String(), userID.String())
	if err != nil {
		return core.NewPersistenceError("delete dashboard", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return core.NewPersistenceError("delete dashboard", err)
	}
	if affected == 0 {
		return core.ErrDashboardNotFound
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*dashboard.Snapshot, error) {
	var snap dashboard.Snapshot
	var id, userID string
	var columnsJSON, configJSON []byte

	err := row.Scan(&id, &userID, &snap.Title, &snap.DatasetName, &columnsJSON, &configJSON, &snap.CreatedAt)
	if err != nil {
		return nil, err
	}

	snap.ID = core.DashboardID(id)
	snap.UserID = core.UserID(userID)
	if len(columnsJSON) > 0 {
		if err := json.Unmarshal(columnsJSON, &snap.DatasetColumns); err != nil {
			return nil, err
		}
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &snap.Config); err != nil {
			return nil, err
		}
	}

	return &snap, nil
}
