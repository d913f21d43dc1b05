package ui

import (
	"time"

	"godash/domain/core"
	"godash/domain/dashboard"
	"godash/domain/dataset"
	"godash/internal/profile"
)

// datasetResponse is the upload reply: identity plus the inferred schema the
// client shows while analysis runs.
type datasetResponse struct {
	ID          core.DatasetID          `json:"id"`
	Name        string                  `json:"name"`
	Columns     []string                `json:"columns"`
	RecordCount int                     `json:"recordCount"`
	Profile     []profile.ColumnProfile `json:"profile"`
	UploadedAt  time.Time               `json:"uploadedAt"`
}

func newDatasetResponse(ds *dataset.Dataset, profiles []profile.ColumnProfile) datasetResponse {
	return datasetResponse{
		ID:          ds.ID,
		Name:        ds.Name,
		Columns:     ds.Columns,
		RecordCount: ds.RecordCount(),
		Profile:     profiles,
		UploadedAt:  ds.UploadedAt,
	}
}

// saveDashboardRequest is the persistence payload from the client. The config
// is stored verbatim, materialized data included.
type saveDashboardRequest struct {
	Title          string           `json:"title" binding:"max=255"`
	DatasetName    string           `json:"datasetName" binding:"required,max=255"`
	DatasetColumns []string         `json:"datasetColumns" binding:"required,min=1"`
	Config         dashboard.Config `json:"config"`
}

// dashboardListItem is the lean listing row; full configs only travel on
// single-snapshot fetches.
type dashboardListItem struct {
	ID          core.DashboardID `json:"id"`
	Title       string           `json:"title"`
	DatasetName string           `json:"datasetName"`
	ChartCount  int              `json:"chartCount"`
	TableCount  int              `json:"tableCount"`
	MetricCount int              `json:"metricCount"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func newDashboardListItem(s *dashboard.Snapshot) dashboardListItem {
	return dashboardListItem{
		ID:          s.ID,
		Title:       s.Title,
		DatasetName: s.DatasetName,
		ChartCount:  len(s.Config.Charts),
		TableCount:  len(s.Config.Tables),
		MetricCount: len(s.Config.Metrics),
		CreatedAt:   s.CreatedAt,
	}
}
