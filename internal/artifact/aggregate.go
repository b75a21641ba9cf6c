package artifact

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dbtbench/dbtbench/internal/metrics"
	"github.com/dbtbench/dbtbench/internal/models"
)

// AggregateReports merges reports from repeated runs of the same pipeline
// into one report of per-metric means. With four or more runs, IQR outliers
// are trimmed before averaging so a single cold-cache run does not skew the
// baseline. A model's data hash is kept only when every run that recorded
// one agrees; disagreeing hashes are dropped rather than guessed at.
func AggregateReports(reports []*models.Report) (*models.Report, error) {
	if len(reports) == 0 {
		return nil, fmt.Errorf("%w: no reports to aggregate", ErrInvalidArtifact)
	}
	if len(reports) == 1 {
		return reports[0], nil
	}

	out := &models.Report{
		Pipeline:    reports[0].Pipeline,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Models:      make(map[string]models.ModelKPIs),
	}

	for _, name := range unionModelNames(reports) {
		samples := map[string][]float64{}
		hashes := map[string]bool{}
		runs := 0
		for _, r := range reports {
			kpis, ok := r.Models[name]
			if !ok {
				continue
			}
			runs++
			for metric := range kpis.Metrics {
				if v, ok := kpis.Numeric(metric); ok {
					samples[metric] = append(samples[metric], v)
				}
			}
			if kpis.DataHash != "" {
				hashes[kpis.DataHash] = true
			}
		}
		if runs < len(reports) {
			slog.Debug("model missing from some runs", "model", name, "runs", runs, "total", len(reports))
		}

		merged := models.ModelKPIs{Metrics: make(map[string]any, len(samples))}
		for metric, values := range samples {
			trimmed := metrics.TrimOutliers(values)
			if dropped := len(values) - len(trimmed); dropped > 0 {
				slog.Debug("trimmed outlier samples", "model", name, "metric", metric, "dropped", dropped)
			}
			merged.Metrics[metric] = metrics.Mean(trimmed)
		}
		if len(hashes) == 1 {
			for h := range hashes {
				merged.DataHash = h
			}
		}
		out.Models[name] = merged
	}

	return out, nil
}

func unionModelNames(reports []*models.Report) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range reports {
		for name := range r.Models {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
