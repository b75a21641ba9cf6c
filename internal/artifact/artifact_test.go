package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbtbench/dbtbench/internal/models"
	"github.com/dbtbench/dbtbench/internal/pricing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const manifestJSON = `{
	"nodes": {
		"model.analytics.orders": {
			"name": "orders",
			"resource_type": "model",
			"compiled_code": "WITH base AS (SELECT 1) SELECT * FROM base INNER JOIN customers c ON 1=1"
		},
		"model.analytics.customers": {
			"name": "customers",
			"resource_type": "model",
			"raw_code": "SELECT * FROM raw_customers"
		},
		"test.analytics.not_null_orders_id": {
			"name": "not_null_orders_id",
			"resource_type": "test"
		}
	}
}`

const runResultsJSON = `{
	"results": [
		{
			"unique_id": "model.analytics.orders",
			"status": "success",
			"execution_time": 12.5,
			"adapter_response": {"rows_affected": 1000, "bytes_scanned": 10737418240}
		},
		{
			"unique_id": "model.analytics.customers",
			"status": "success",
			"execution_time": 60.0,
			"adapter_response": {}
		},
		{
			"unique_id": "model.analytics.broken",
			"status": "error",
			"execution_time": 0.1
		},
		{
			"unique_id": "test.analytics.not_null_orders_id",
			"status": "pass",
			"execution_time": 0.2
		}
	]
}`

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "manifest.json", manifestJSON)

	m, err := LoadManifest(path)
	require.NoError(t, err)

	nodes := m.ModelNodes()
	require.Len(t, nodes, 2) // test node excluded
	require.Contains(t, nodes, "orders")
	require.Contains(t, nodes, "customers")
	require.Contains(t, nodes["orders"].SQL(), "INNER JOIN")
	// Falls back to raw code when compiled code is absent.
	require.Equal(t, "SELECT * FROM raw_customers", nodes["customers"].SQL())
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrMissingArtifact)
}

func TestLoadManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "manifest.json", `{"nodes": {}}`)
	_, err := LoadManifest(path)
	require.ErrorIs(t, err, ErrInvalidArtifact)

	path = writeFile(t, dir, "garbage.json", "not json")
	_, err = LoadManifest(path)
	require.ErrorIs(t, err, ErrInvalidArtifact)
}

func TestLoadRunResults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run_results.json", runResultsJSON)

	r, err := LoadRunResults(path)
	require.NoError(t, err)
	require.Len(t, r.Results, 4)
	require.Equal(t, "orders", r.Results[0].ModelName())
	require.True(t, r.Results[0].IsModel())
	require.False(t, r.Results[3].IsModel())
}

func TestExtractReport(t *testing.T) {
	dir := t.TempDir()
	manifest, err := LoadManifest(writeFile(t, dir, "manifest.json", manifestJSON))
	require.NoError(t, err)
	results, err := LoadRunResults(writeFile(t, dir, "run_results.json", runResultsJSON))
	require.NoError(t, err)

	report, err := ExtractReport(manifest, results, ExtractOptions{
		Pipeline:      "analytics",
		WarehouseSize: pricing.WarehouseXSmall,
		Calculator:    pricing.NewCalculator(pricing.EditionStandard),
	})
	require.NoError(t, err)

	require.Equal(t, "analytics", report.Pipeline)
	require.NotEmpty(t, report.GeneratedAt)
	// error and test results are excluded
	require.Len(t, report.Models, 2)

	orders := report.Models["orders"]
	v, ok := orders.Numeric(models.MetricExecutionTime)
	require.True(t, ok)
	require.Equal(t, 12.5, v)

	v, ok = orders.Numeric(models.MetricRowsProduced)
	require.True(t, ok)
	require.Equal(t, 1000.0, v)

	// 10 GiB scanned -> 1 credit -> $2 at standard pricing
	v, ok = orders.Numeric(models.MetricCreditsConsumed)
	require.True(t, ok)
	require.Equal(t, 1.0, v)
	v, ok = orders.Numeric(models.MetricEstimatedCostUSD)
	require.True(t, ok)
	require.Equal(t, 2.0, v)

	// complexity counters from compiled SQL
	v, ok = orders.Numeric(models.MetricJoinCount)
	require.True(t, ok)
	require.Equal(t, 1.0, v)
	v, ok = orders.Numeric(models.MetricCTECount)
	require.True(t, ok)
	require.Equal(t, 1.0, v)

	// customers has no scan stats: runtime credits on XS, 60s -> 1 credit
	customers := report.Models["customers"]
	v, ok = customers.Numeric(models.MetricCreditsConsumed)
	require.True(t, ok)
	require.Equal(t, 1.0, v)
}

func TestExtractReport_NoSuccessfulModels(t *testing.T) {
	dir := t.TempDir()
	manifest, err := LoadManifest(writeFile(t, dir, "manifest.json", manifestJSON))
	require.NoError(t, err)

	results := &RunResults{Results: []RunResult{
		{UniqueID: "model.analytics.orders", Status: "error", ExecutionTime: 1},
	}}

	_, err = ExtractReport(manifest, results, ExtractOptions{})
	require.ErrorIs(t, err, ErrInvalidArtifact)
}

func TestWriteAndLoadReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	report := &models.Report{
		Pipeline: "analytics",
		Models: map[string]models.ModelKPIs{
			"orders": {Metrics: map[string]any{models.MetricExecutionTime: 10.0}},
		},
	}
	require.NoError(t, WriteReport(path, report))

	back, err := LoadReport(path)
	require.NoError(t, err)
	require.Equal(t, "analytics", back.Pipeline)
	v, ok := back.Models["orders"].Numeric(models.MetricExecutionTime)
	require.True(t, ok)
	require.Equal(t, 10.0, v)
}

func TestLoadReport_NoModels(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.json", `{"models": {}}`)
	_, err := LoadReport(path)
	require.ErrorIs(t, err, ErrInvalidArtifact)
}
