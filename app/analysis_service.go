package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"godash/domain/core"
	"godash/domain/dashboard"
	"godash/domain/dataset"
	"godash/internal/cache"
	"godash/internal/profile"
	"godash/internal/tables"
	"godash/internal/validation"
	"godash/ports"
)

// AnalysisService runs the upload-to-dashboard pipeline: schema context to
// the AI collaborator, repair of its column references, then local
// computation of every number that ends up on screen.
type AnalysisService struct {
	generator    ports.ConfigGenerator
	datasets     *cache.DatasetCache
	profiler     *profile.Profiler
	materializer *tables.Materializer
	upstream     *semaphore.Weighted

	mu     sync.Mutex
	latest map[string]int64
}

// AnalysisResult is one finished pipeline run. Superseded marks runs that a
// newer request for the same dataset overtook while this one was in flight;
// nothing is cancelled, the client just knows which result is current.
type AnalysisResult struct {
	Seq         int64             `json:"seq"`
	Superseded  bool              `json:"superseded"`
	DatasetID   core.DatasetID    `json:"datasetId"`
	DatasetName string            `json:"datasetName"`
	Columns     []string          `json:"columns"`
	RecordCount int               `json:"recordCount"`
	Config      *dashboard.Config `json:"config"`
	SummaryHTML string            `json:"summaryHtml,omitempty"`
}

func NewAnalysisService(generator ports.ConfigGenerator, datasets *cache.DatasetCache, materializer *tables.Materializer, maxConcurrent int64) *AnalysisService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &AnalysisService{
		generator:    generator,
		datasets:     datasets,
		profiler:     profile.NewProfiler(),
		materializer: materializer,
		upstream:     semaphore.NewWeighted(maxConcurrent),
		latest:       make(map[string]int64),
	}
}

// Analyze produces a validated, materialized dashboard config for a cached
// dataset. The dataset must still be cached and owned by userID.
func (s *AnalysisService) Analyze(ctx context.Context, userID core.UserID, datasetID core.DatasetID) (*AnalysisResult, error) {
	ds, ok := s.datasets.GetOwned(datasetID, userID)
	if !ok {
		return nil, core.ErrDatasetNotFound
	}

	seq := s.begin(userID, datasetID)

	profiles := s.profiler.Profile(ds)

	// The semaphore bounds in-flight upstream calls across all users, not
	// the local computation that follows.
	if err := s.upstream.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for an analysis slot: %w", err)
	}
	cfg, err := s.generator.GenerateConfig(ctx, ports.GenerateRequest{
		DatasetName: ds.Name,
		Columns:     ds.Columns,
		ColumnTypes: profile.TypeMap(profiles),
		SampleRows:  sampleRows(ds),
	})
	s.upstream.Release(1)
	if err != nil {
		return nil, err
	}

	cfg.Charts = validation.ValidateCharts(cfg.Charts, ds.Columns, ds.Representative())
	cfg.Tables = s.materializer.MaterializeAll(cfg.Tables, ds.Records)
	// metrics pass through exactly as proposed

	result := &AnalysisResult{
		Seq:         seq,
		Superseded:  s.overtaken(userID, datasetID, seq),
		DatasetID:   ds.ID,
		DatasetName: ds.Name,
		Columns:     ds.Columns,
		RecordCount: ds.RecordCount(),
		Config:      cfg,
		SummaryHTML: renderSummary(cfg.Summary),
	}

	log.Info().
		Str("dataset", ds.Name).
		Int64("seq", seq).
		Bool("superseded", result.Superseded).
		Int("charts", len(cfg.Charts)).
		Int("tables", len(cfg.Tables)).
		Int("metrics", len(cfg.Metrics)).
		Msg("analysis complete")

	return result, nil
}

func (s *AnalysisService) begin(userID core.UserID, datasetID core.DatasetID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := runKey(userID, datasetID)
	s.latest[key]++
	return s.latest[key]
}

// overtaken reports whether a newer run for the same (user, dataset) pair
// started after seq did.
func (s *AnalysisService) overtaken(userID core.UserID, datasetID core.DatasetID, seq int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[runKey(userID, datasetID)] > seq
}

func runKey(userID core.UserID, datasetID core.DatasetID) string {
	return userID.String() + "\x00" + datasetID.String()
}

func sampleRows(ds *dataset.Dataset) []dataset.Record {
	const n = 5
	if len(ds.Records) <= n {
		return ds.Records
	}
	return ds.Records[:n]
}

// renderSummary converts the AI's markdown summary to HTML. Raw HTML inside
// the summary is model output and gets dropped.
func renderSummary(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}
