package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"godash/domain/core"
	"godash/domain/dashboard"
	"godash/domain/dataset"
	"godash/ports"
)

// maxPromptSampleRows bounds how many records are serialized into the prompt
// regardless of what the caller supplies.
const maxPromptSampleRows = 5

// DashboardGenerator implements ports.ConfigGenerator against a hosted chat
// model. It serializes the dataset schema into a prompt, requests a dashboard
// proposal in JSON mode and decodes the reply leniently. The returned config
// is unvalidated: column references may be hallucinated and are repaired
// downstream.
type DashboardGenerator struct {
	structured *StructuredClient
}

// NewDashboardGenerator wires a generator over any LLM transport.
func NewDashboardGenerator(client ports.LLMClient) *DashboardGenerator {
	return &DashboardGenerator{structured: NewStructuredClient(client)}
}

// columnForPrompt pairs a column with its inferred statistical type.
type columnForPrompt struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// schemaForPrompt is the only dataset context that leaves the process.
type schemaForPrompt struct {
	DatasetName string            `json:"datasetName"`
	Columns     []columnForPrompt `json:"columns"`
	SampleRows  []dataset.Record  `json:"sampleRows,omitempty"`
}

func (g *DashboardGenerator) GenerateConfig(ctx context.Context, req ports.GenerateRequest) (*dashboard.Config, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	content, err := g.structured.GetJSONContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cfg, err := dashboard.DecodeConfig([]byte(content))
	if err != nil {
		log.Debug().Err(err).Int("contentLength", len(content)).Msg("dashboard payload failed to decode")
		return nil, core.NewUpstreamParseError("reply does not decode as a dashboard config", err)
	}
	if cfg.Empty() {
		return nil, core.NewUpstreamResponseError("reply contained no charts, tables or metrics", nil)
	}

	log.Debug().
		Int("charts", len(cfg.Charts)).
		Int("tables", len(cfg.Tables)).
		Int("metrics", len(cfg.Metrics)).
		Msg("dashboard config generated")

	return cfg, nil
}

func buildPrompt(req ports.GenerateRequest) (string, error) {
	columns := make([]columnForPrompt, 0, len(req.Columns))
	for _, name := range req.Columns {
		colType := "unknown"
		if t, ok := req.ColumnTypes[name]; ok {
			colType = string(t)
		}
		columns = append(columns, columnForPrompt{Name: name, Type: colType})
	}

	samples := req.SampleRows
	if len(samples) > maxPromptSampleRows {
		samples = samples[:maxPromptSampleRows]
	}

	schema := schemaForPrompt{
		DatasetName: req.DatasetName,
		Columns:     columns,
		SampleRows:  samples,
	}
	jsonData, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema for prompt: %w", err)
	}

	prompt := fmt.Sprintf(`You are a dashboard designer for tabular datasets.

Dataset schema:
%s

Requirements:
- Propose at least 4 charts, at least 2 table descriptions and at least 2 headline metrics.
- Chart "type" must be one of [line, bar, area, pie, scatter].
- Each chart MUST have "title", "xAxis", "yAxis" and a "series" array of {"column", "role", "stroke", "fill"} objects.
- Every column reference (xAxis, yAxis, series column, table columns) MUST be a name from this list: %s
- Table "kind" must be one of [summary_statistics, frequency_distribution, top_n_values]. Use "columns" (array) for summary_statistics, "column" for frequency_distribution, and "column" + "groupBy" + "n" for top_n_values. Do NOT include table data; it is computed locally from the records.
- Metrics are {"label", "value", "unit"} objects where value names a column or a short derived figure.
- Include "summary": 2-4 sentences of markdown describing what the dashboard shows.

Output ONLY a JSON object with keys "charts", "tableDescriptions", "metrics" and "summary", no other text.`,
		string(jsonData),
		strings.Join(req.Columns, ", "))

	return prompt, nil
}
