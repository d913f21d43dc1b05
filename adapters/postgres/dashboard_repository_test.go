package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godash/domain/core"
	"godash/domain/dashboard"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func snapshotColumns() []string {
	return []string{"id", "user_id", "title", "dataset_name", "dataset_columns", "config", "created_at"}
}

func TestDashboardRepositorySave(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	snap := &dashboard.Snapshot{
		ID:             core.DashboardID("dash-1"),
		UserID:         core.UserID("user-1"),
		Title:          "Sales overview",
		DatasetName:    "sales.csv",
		DatasetColumns: []string{"date", "revenue"},
		Config:         dashboard.Config{Summary: "Revenue by day."},
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO dashboards").
		WithArgs("dash-1", "user-1", "Sales overview", "sales.csv",
			sqlmock.AnyArg(), sqlmock.AnyArg(), snap.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), snap)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositorySaveWrapsDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectExec("INSERT INTO dashboards").
		WillReturnError(errors.New("connection reset"))

	err := repo.Save(context.Background(), &dashboard.Snapshot{
		ID:     core.DashboardID("dash-1"),
		UserID: core.UserID("user-1"),
	})
	require.Error(t, err)
	assert.True(t, core.IsPersistenceError(err))
}

func TestDashboardRepositoryGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	cfg := dashboard.Config{
		Charts:  []dashboard.ChartSpec{{Type: dashboard.ChartBar, Title: "Revenue by region"}},
		Metrics: []dashboard.MetricSpec{{Label: "Top column", Value: "revenue"}},
		Summary: "One chart.",
	}
	configJSON, err := json.Marshal(cfg)
	require.NoError(t, err)

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(snapshotColumns()).
		AddRow("dash-1", "user-1", "Sales overview", "sales.csv",
			[]byte(`["date","revenue"]`), configJSON, createdAt)

	mock.ExpectQuery("FROM dashboards WHERE id").
		WithArgs("dash-1").
		WillReturnRows(rows)

	snap, err := repo.GetByID(context.Background(), core.DashboardID("dash-1"))
	require.NoError(t, err)

	assert.Equal(t, core.DashboardID("dash-1"), snap.ID)
	assert.Equal(t, core.UserID("user-1"), snap.UserID)
	assert.Equal(t, []string{"date", "revenue"}, snap.DatasetColumns)
	require.Len(t, snap.Config.Charts, 1)
	assert.Equal(t, "Revenue by region", snap.Config.Charts[0].Title)
	assert.Equal(t, "Top column", snap.Config.Metrics[0].Label)
	assert.Equal(t, createdAt, snap.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositoryGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectQuery("FROM dashboards WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), core.DashboardID("missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDashboardNotFound))
	assert.True(t, core.IsNotFoundError(err))
}

func TestDashboardRepositoryListByUserOrdersNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	newer := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	older := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(snapshotColumns()).
		AddRow("dash-2", "user-1", "Second", "b.csv", []byte(`[]`), []byte(`{}`), newer).
		AddRow("dash-1", "user-1", "First", "a.csv", []byte(`[]`), []byte(`{}`), older)

	mock.ExpectQuery("FROM dashboards WHERE user_id = .+ ORDER BY created_at DESC").
		WithArgs("user-1").
		WillReturnRows(rows)

	snaps, err := repo.ListByUser(context.Background(), core.UserID("user-1"))
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "Second", snaps[0].Title)
	assert.Equal(t, "First", snaps[1].Title)
	assert.True(t, snaps[0].CreatedAt.After(snaps[1].CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositoryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectExec("DELETE FROM dashboards").
		WithArgs("dash-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), core.DashboardID("dash-1"), core.UserID("user-1"))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositoryDeleteMissingOrForeign(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectExec("DELETE FROM dashboards").
		WithArgs("dash-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), core.DashboardID("dash-1"), core.UserID("intruder"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDashboardNotFound))
}
