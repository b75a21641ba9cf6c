package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbtbench/dbtbench/internal/models"
)

func runReport(hash string, execTime float64) *models.Report {
	return &models.Report{
		Pipeline: "analytics",
		Models: map[string]models.ModelKPIs{
			"orders": {
				Metrics:  map[string]any{models.MetricExecutionTime: execTime},
				DataHash: hash,
			},
		},
	}
}

func TestAggregateReports_MeansMetrics(t *testing.T) {
	merged, err := AggregateReports([]*models.Report{
		runReport("aaa", 10.0),
		runReport("aaa", 12.0),
		runReport("aaa", 14.0),
	})
	require.NoError(t, err)

	require.Equal(t, "analytics", merged.Pipeline)
	orders := merged.Models["orders"]
	v, ok := orders.Numeric(models.MetricExecutionTime)
	require.True(t, ok)
	require.Equal(t, 12.0, v)
	require.Equal(t, "aaa", orders.DataHash)
}

func TestAggregateReports_TrimsOutliers(t *testing.T) {
	// Four consistent runs plus one cold-cache outlier; the 100s sample sits
	// far outside the IQR fences and must not drag the mean.
	merged, err := AggregateReports([]*models.Report{
		runReport("aaa", 10.0),
		runReport("aaa", 11.0),
		runReport("aaa", 10.5),
		runReport("aaa", 11.5),
		runReport("aaa", 100.0),
	})
	require.NoError(t, err)

	v, ok := merged.Models["orders"].Numeric(models.MetricExecutionTime)
	require.True(t, ok)
	require.Equal(t, 10.75, v)
}

func TestAggregateReports_DisagreeingHashesDropped(t *testing.T) {
	merged, err := AggregateReports([]*models.Report{
		runReport("aaa", 10.0),
		runReport("bbb", 10.0),
	})
	require.NoError(t, err)
	require.Empty(t, merged.Models["orders"].DataHash)
}

func TestAggregateReports_UnionOfModels(t *testing.T) {
	r1 := runReport("aaa", 10.0)
	r2 := runReport("aaa", 12.0)
	r2.Models["customers"] = models.ModelKPIs{
		Metrics: map[string]any{models.MetricExecutionTime: 5.0},
	}

	merged, err := AggregateReports([]*models.Report{r1, r2})
	require.NoError(t, err)
	require.Len(t, merged.Models, 2)

	v, ok := merged.Models["customers"].Numeric(models.MetricExecutionTime)
	require.True(t, ok)
	require.Equal(t, 5.0, v)
}

func TestAggregateReports_SingleReportPassthrough(t *testing.T) {
	r := runReport("aaa", 10.0)
	merged, err := AggregateReports([]*models.Report{r})
	require.NoError(t, err)
	require.Same(t, r, merged)
}

func TestAggregateReports_Empty(t *testing.T) {
	_, err := AggregateReports(nil)
	require.ErrorIs(t, err, ErrInvalidArtifact)
}
