// Package artifact reads dbt build artifacts (manifest.json, run_results.json)
// and benchmark report files, and assembles per-model KPI reports from them.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dbtbench/dbtbench/internal/models"
	"github.com/dbtbench/dbtbench/internal/pricing"
	"github.com/dbtbench/dbtbench/internal/sqlmetrics"
)

var (
	// ErrMissingArtifact reports an artifact file that does not exist.
	ErrMissingArtifact = errors.New("artifact file not found")
	// ErrInvalidArtifact reports an artifact that exists but cannot be parsed.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// ManifestNode is the subset of a dbt manifest node we consume.
type ManifestNode struct {
	Name         string `json:"name"`
	ResourceType string `json:"resource_type"`
	CompiledCode string `json:"compiled_code"`
	RawCode      string `json:"raw_code"`
}

// SQL returns the best available SQL text for complexity analysis,
// preferring compiled code over raw Jinja.
func (n ManifestNode) SQL() string {
	if n.CompiledCode != "" {
		return n.CompiledCode
	}
	return n.RawCode
}

// Manifest is the subset of dbt's manifest.json we consume.
type Manifest struct {
	Nodes map[string]ManifestNode `json:"nodes"`
}

// ModelNodes returns only the model-type nodes, keyed by model name.
func (m *Manifest) ModelNodes() map[string]ManifestNode {
	out := make(map[string]ManifestNode)
	for _, node := range m.Nodes {
		if node.ResourceType == "model" {
			out[node.Name] = node
		}
	}
	return out
}

// RunResult is one entry from dbt's run_results.json.
type RunResult struct {
	UniqueID        string         `json:"unique_id"`
	Status          string         `json:"status"`
	ExecutionTime   float64        `json:"execution_time"`
	AdapterResponse map[string]any `json:"adapter_response"`
}

// ModelName derives the model name from a dbt unique_id
// ("model.project.name" -> "name").
func (r RunResult) ModelName() string {
	parts := strings.Split(r.UniqueID, ".")
	return parts[len(parts)-1]
}

// IsModel reports whether the result belongs to a model node.
func (r RunResult) IsModel() bool {
	return strings.HasPrefix(r.UniqueID, "model.")
}

// adapterInt reads an integer field from the adapter response, tolerating
// the float64 that encoding/json produces and the string form some adapters
// emit.
func (r RunResult) adapterInt(keys ...string) (int64, bool) {
	for _, key := range keys {
		v, ok := r.AdapterResponse[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n), true
		case json.Number:
			i, err := n.Int64()
			if err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

// RunResults is the subset of dbt's run_results.json we consume.
type RunResults struct {
	Results []RunResult `json:"results"`
}

// LoadManifest reads and parses a dbt manifest.json.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if err := loadJSON(path, &m); err != nil {
		return nil, err
	}
	if len(m.Nodes) == 0 {
		return nil, fmt.Errorf("%w: %s has no nodes", ErrInvalidArtifact, path)
	}
	return &m, nil
}

// LoadRunResults reads and parses a dbt run_results.json.
func LoadRunResults(path string) (*RunResults, error) {
	var r RunResults
	if err := loadJSON(path, &r); err != nil {
		return nil, err
	}
	if len(r.Results) == 0 {
		return nil, fmt.Errorf("%w: %s has no results", ErrInvalidArtifact, path)
	}
	return &r, nil
}

// LoadReport reads a benchmark report file.
func LoadReport(path string) (*models.Report, error) {
	var report models.Report
	if err := loadJSON(path, &report); err != nil {
		return nil, err
	}
	if len(report.Models) == 0 {
		return nil, fmt.Errorf("%w: %s has no models", ErrInvalidArtifact, path)
	}
	return &report, nil
}

// WriteReport writes a report as indented JSON.
func WriteReport(path string, report *models.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// ExtractOptions controls KPI extraction from dbt artifacts.
type ExtractOptions struct {
	Pipeline      string
	WarehouseSize pricing.WarehouseSize
	Calculator    *pricing.Calculator
}

// ExtractReport assembles a benchmark report from a manifest and run
// results: execution time, row/byte counters, derived credit and cost
// estimates, and static SQL complexity per model. Skipped and errored
// results are excluded; a run with no successful model results is an error.
func ExtractReport(manifest *Manifest, results *RunResults, opts ExtractOptions) (*models.Report, error) {
	if opts.Calculator == nil {
		opts.Calculator = pricing.NewCalculator(pricing.EditionStandard)
	}
	if opts.WarehouseSize == "" {
		opts.WarehouseSize = pricing.WarehouseXSmall
	}

	nodes := manifest.ModelNodes()
	report := &models.Report{
		Pipeline:    opts.Pipeline,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Models:      make(map[string]models.ModelKPIs),
	}

	for _, result := range results.Results {
		if !result.IsModel() {
			continue
		}
		name := result.ModelName()
		if result.Status != "success" {
			slog.Warn("skipping non-successful model result",
				"model", name, "status", result.Status)
			continue
		}

		metrics := map[string]any{
			models.MetricExecutionTime: result.ExecutionTime,
		}
		if rows, ok := result.adapterInt("rows_affected", "rows_produced"); ok {
			metrics[models.MetricRowsProduced] = float64(rows)
		}

		credits := 0.0
		if bytes, ok := result.adapterInt("bytes_scanned", "bytes_processed"); ok {
			metrics[models.MetricBytesScanned] = float64(bytes)
			credits = pricing.CreditsFromBytes(bytes)
		} else {
			// No scan statistics; fall back to runtime-based credits.
			rc, err := pricing.RuntimeCredits(result.ExecutionTime, opts.WarehouseSize)
			if err != nil {
				return nil, err
			}
			credits = rc
		}
		metrics[models.MetricCreditsConsumed] = credits
		metrics[models.MetricEstimatedCostUSD] = opts.Calculator.CostFromCredits(credits)

		if node, ok := nodes[name]; ok && node.SQL() != "" {
			for metric, v := range sqlmetrics.Extract(node.SQL()).Metrics() {
				metrics[metric] = v
			}
		} else {
			slog.Debug("model has no compiled SQL in manifest", "model", name)
		}

		report.Models[name] = models.ModelKPIs{Metrics: metrics}
	}

	if len(report.Models) == 0 {
		return nil, fmt.Errorf("%w: no successful model results", ErrInvalidArtifact)
	}

	slog.Info("extracted model metrics",
		"models", len(report.Models), "warehouse_size", opts.WarehouseSize)
	return report, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingArtifact, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}
	return nil
}
