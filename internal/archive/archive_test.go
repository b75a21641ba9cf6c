package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbtbench/dbtbench/internal/models"
	"github.com/dbtbench/dbtbench/internal/reporting"
)

func sampleReport() *reporting.AnalysisReport {
	r := reporting.NewAnalysisReport("analytics")
	r.Bottlenecks = map[string]models.BottleneckResult{
		"orders": {
			ModelName:       "orders",
			ImpactScore:     22.0,
			Severity:        models.SeverityHigh,
			RegressionFlags: []string{models.FlagExecutionTimeRegression},
		},
	}
	return r
}

func TestKey_Deterministic(t *testing.T) {
	dir := t.TempDir()
	baseline := filepath.Join(dir, "baseline.json")
	candidate := filepath.Join(dir, "candidate.json")
	require.NoError(t, os.WriteFile(baseline, []byte(`{"models":{}}`), 0644))
	require.NoError(t, os.WriteFile(candidate, []byte(`{"models":{"m":{}}}`), 0644))

	k1, err := Key(baseline, candidate)
	require.NoError(t, err)
	k2, err := Key(baseline, candidate)
	require.NoError(t, err)
	require.Equal(t, k1, k2)

	// Order matters: swapping baseline and candidate is a different run.
	k3, err := Key(candidate, baseline)
	require.NoError(t, err)
	require.NotEqual(t, k1, k3)
}

func TestKey_MissingFile(t *testing.T) {
	_, err := Key(filepath.Join(t.TempDir(), "nope.json"), "also-missing.json")
	require.Error(t, err)
}

func TestPutAndGet(t *testing.T) {
	a := New(t.TempDir())

	require.NoError(t, a.Put("key1", sampleReport()))

	got, ok := a.Get("key1")
	require.True(t, ok)
	require.Equal(t, "analytics", got.Pipeline)
	require.Equal(t, 22.0, got.Bottlenecks["orders"].ImpactScore)
	require.True(t, got.HasRegressions())
}

func TestGet_Miss(t *testing.T) {
	a := New(t.TempDir())
	_, ok := a.Get("missing")
	require.False(t, ok)
}

func TestGet_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+entryExt), []byte("not zstd"), 0644))

	_, ok := a.Get("bad")
	require.False(t, ok)
}

func TestList(t *testing.T) {
	a := New(t.TempDir())
	require.NoError(t, a.Put("bbb", sampleReport()))
	require.NoError(t, a.Put("aaa", sampleReport()))

	keys, err := a.List()
	require.NoError(t, err)
	require.Equal(t, []string{"aaa", "bbb"}, keys)
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "never-created"))
	keys, err := a.List()
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)
	require.NoError(t, a.Put("key1", sampleReport()))

	require.NoError(t, a.Clear())
	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))
}

func TestClear_RefusesForeignFiles(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)
	require.NoError(t, a.Put("key1", sampleReport()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep me"), 0644))

	require.Error(t, a.Clear())
	_, err := os.Stat(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
}

func TestDisabledArchive(t *testing.T) {
	a := New("")
	require.NoError(t, a.Put("k", sampleReport()))
	_, ok := a.Get("k")
	require.False(t, ok)
	keys, err := a.List()
	require.NoError(t, err)
	require.Empty(t, keys)
	require.NoError(t, a.Clear())
}
