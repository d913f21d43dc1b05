package app

import (
	"context"
	"io"
	"strings"
	"time"

	"godash/adapters/export"
	"godash/domain/core"
	"godash/domain/dashboard"
	"godash/ports"
)

// DashboardService persists and retrieves dashboard snapshots. Ownership is
// enforced on every read and delete: a foreign snapshot is indistinguishable
// from a missing one.
type DashboardService struct {
	repo     ports.DashboardRepository
	exporter *export.XLSXExporter
}

// SaveDashboardRequest carries everything a snapshot freezes: the config
// verbatim, including materialized table data, plus the dataset context it
// was computed from.
type SaveDashboardRequest struct {
	UserID         core.UserID
	Title          string
	DatasetName    string
	DatasetColumns []string
	Config         dashboard.Config
}

func NewDashboardService(repo ports.DashboardRepository, exporter *export.XLSXExporter) *DashboardService {
	return &DashboardService{repo: repo, exporter: exporter}
}

func (s *DashboardService) Save(ctx context.Context, req SaveDashboardRequest) (*dashboard.Snapshot, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled Dashboard"
	}

	snapshot := &dashboard.Snapshot{
		ID:             core.DashboardID(core.NewID()),
		UserID:         req.UserID,
		Title:          title,
		DatasetName:    req.DatasetName,
		DatasetColumns: req.DatasetColumns,
		Config:         req.Config,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// List returns the user's snapshots, newest first.
func (s *DashboardService) List(ctx context.Context, userID core.UserID) ([]*dashboard.Snapshot, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *DashboardService) Get(ctx context.Context, id core.DashboardID, userID core.UserID) (*dashboard.Snapshot, error) {
	snapshot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snapshot.UserID != userID {
		return nil, core.ErrDashboardNotFound
	}
	return snapshot, nil
}

func (s *DashboardService) Delete(ctx context.Context, id core.DashboardID, userID core.UserID) error {
	return s.repo.Delete(ctx, id, userID)
}

// ExportXLSX writes the snapshot as a workbook to w and returns the snapshot
// so the caller can name the download.
func (s *DashboardService) ExportXLSX(ctx context.Context, id core.DashboardID, userID core.UserID, w io.Writer) (*dashboard.Snapshot, error) {
	snapshot, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.exporter.Export(snapshot, w); err != nil {
		return nil, err
	}
	return snapshot, nil
}
