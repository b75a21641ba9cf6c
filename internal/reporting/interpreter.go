package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbtbench/dbtbench/internal/models"
)

// InterpretImpactScore returns a plain-language label for an impact score (0–100).
func InterpretImpactScore(score float64) string {
	switch {
	case score > 66:
		return "Severe (>66)"
	case score >= 33:
		return "Significant (33-66)"
	case score > 0:
		return "Minor (<33)"
	default:
		return "No measurable impact"
	}
}

// InterpretDeltaSummary returns a human-readable explanation of the overall
// comparison outcome.
func InterpretDeltaSummary(s models.DeltaSummary) string {
	if s.TotalMetricsProcessed == 0 {
		return "No metrics could be compared."
	}
	switch {
	case s.Regressions == 0 && s.Improvements == 0:
		return "All metrics are unchanged."
	case s.Regressions == 0:
		return fmt.Sprintf("All movement is positive — %d metric(s) improved, none regressed.", s.Improvements)
	case s.Improvements == 0:
		return fmt.Sprintf("All movement is negative — %d metric(s) regressed, none improved.", s.Regressions)
	case s.Regressions > s.Improvements:
		return fmt.Sprintf("Net regression — %d metric(s) regressed against %d improved.", s.Regressions, s.Improvements)
	default:
		return fmt.Sprintf("Net improvement — %d metric(s) improved against %d regressed.", s.Improvements, s.Regressions)
	}
}

// InterpretDrift explains what a data-drift detection means for the run.
func InterpretDrift(driftModels []string) string {
	if len(driftModels) == 0 {
		return "Output data is identical between runs."
	}
	return fmt.Sprintf("Output data changed for %d model(s) (%s) — performance deltas for these models are not trustworthy until correctness is verified.",
		len(driftModels), strings.Join(driftModels, ", "))
}

// FormatInterpretation produces a full plain-language reading of an
// AnalysisReport, for readers who want conclusions rather than tables.
func FormatInterpretation(report *AnalysisReport) string {
	var b strings.Builder

	b.WriteString("=== Interpretation ===\n\n")
	b.WriteString(InterpretDeltaSummary(report.DeltaSummary) + "\n")
	b.WriteString(InterpretDrift(report.driftModelNames()) + "\n")

	if len(report.RankedModels) > 0 {
		b.WriteString("\nPer-Model Interpretation:\n")
		for _, m := range report.RankedModels {
			icon := "✓"
			if len(m.RegressionFlags) > 0 {
				icon = "✗"
			}
			b.WriteString(fmt.Sprintf("  %s %s: impact %.2f — %s (%s)\n",
				icon, m.ModelName, m.ImpactScore, InterpretImpactScore(m.ImpactScore), m.Severity))
			for _, metric := range sortedAmountKeys(m.RegressionAmounts) {
				b.WriteString(fmt.Sprintf("    %s regressed by %.2f%%\n", metric, m.RegressionAmounts[metric]))
			}
		}
	}

	if report.Summary != nil && report.Summary.TotalRecommendations > 0 {
		b.WriteString(fmt.Sprintf("\n%d optimization recommendation(s) generated; start with the %d high-priority one(s).\n",
			report.Summary.TotalRecommendations, report.Summary.HighPriorityCount))
	}

	return b.String()
}

func sortedAmountKeys(amounts map[string]float64) []string {
	keys := make([]string, 0, len(amounts))
	for k := range amounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
