package ports

import (
	"context"

	"godash/domain/dashboard"
	"godash/domain/dataset"
	"godash/domain/stats"
)

// GenerateRequest is the schema context sent to the AI collaborator. Records
// themselves never leave the process; only column names, inferred types and a
// handful of sample rows do.
type GenerateRequest struct {
	DatasetName string
	Columns     []string
	ColumnTypes map[string]stats.StatisticalType
	SampleRows  []dataset.Record
}

// ConfigGenerator produces a dashboard configuration proposal for a dataset
// schema. Implementations must return a decoded but UNVALIDATED config:
// column references may be hallucinated and are repaired downstream.
type ConfigGenerator interface {
	GenerateConfig(ctx context.Context, req GenerateRequest) (*dashboard.Config, error)
}
