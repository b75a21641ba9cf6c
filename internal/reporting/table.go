package reporting

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/dbtbench/dbtbench/internal/models"
)

// Status indicators used in the comparison table.
const (
	indicatorImproved  = "✓"
	indicatorRegressed = "✗"
	indicatorNeutral   = "—"
	indicatorDrift     = "⚠"
)

// equalityBand is the absolute delta band treated as "unchanged" for display.
const equalityBand = 0.01

// PrintComparisonTable renders the per-model, per-metric delta table.
// New and removed models get a single status row instead of metric rows.
func PrintComparisonTable(w io.Writer, sets map[string]models.ModelDeltaSet) {
	const maxNameWidth = 30
	const minNameWidth = 10

	// Compute dynamic column width from the longest model name.
	nameWidth := len("Model")
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
		if runeLen := utf8.RuneCountInString(name); runeLen > nameWidth {
			nameWidth = runeLen
		}
	}
	sort.Strings(names)
	if nameWidth > maxNameWidth {
		nameWidth = maxNameWidth
	}
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}

	// Fixed column widths (display columns) for emoji-safe alignment.
	const colMetric = 22
	const colDelta = 12
	const colDir = 4
	const colStatus = 14
	totalWidth := nameWidth + colMetric + colDelta + colDir + colStatus + 8 // 8 = 4 gaps × 2 spaces

	fmt.Fprintf(w, "\n")                                      //nolint:errcheck
	fmt.Fprintf(w, "%s\n", strings.Repeat("═", totalWidth))   //nolint:errcheck
	fmt.Fprintf(w, " COMPARISON SUMMARY\n")                   //nolint:errcheck
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("═", totalWidth)) //nolint:errcheck

	fmt.Fprintf(w, "%s  %s  %s  %s  %s\n", //nolint:errcheck
		padRight("Model", nameWidth),
		padRight("Metric", colMetric),
		padRight("Delta", colDelta),
		padRight("Dir", colDir),
		"Status")
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", totalWidth)) //nolint:errcheck

	for _, name := range names {
		set := sets[name]
		display := truncateName(name, nameWidth)

		if !set.Compared() {
			fmt.Fprintf(w, "%s  %s  %s  %s  %s\n", //nolint:errcheck
				padRight(display, nameWidth),
				padRight("-", colMetric),
				padRight("-", colDelta),
				padRight("-", colDir),
				string(set.Status))
			continue
		}

		for _, metric := range sortedMetricNames(set.Deltas) {
			r := set.Deltas[metric]
			fmt.Fprintf(w, "%s  %s  %s  %s  %s\n", //nolint:errcheck
				padRight(display, nameWidth),
				padRight(metric, colMetric),
				padRight(formatDelta(r), colDelta),
				padRight(string(r.Direction), colDir),
				statusCell(r))
			display = "" // model name only on its first row
		}
	}
	fmt.Fprintf(w, "\n") //nolint:errcheck
}

// PrintDeltaSummary renders the aggregate improvement/regression counts.
func PrintDeltaSummary(w io.Writer, s models.DeltaSummary) {
	fmt.Fprintf(w, "Models compared: %d\n", s.TotalModels)                                 //nolint:errcheck
	fmt.Fprintf(w, "Metrics: %d improved, %d regressed, %d errors\n",                      //nolint:errcheck
		s.Improvements, s.Regressions, s.Errors)
	if s.ImprovementBest != nil {
		fmt.Fprintf(w, "Best improvement: %+.2f%% (avg %+.2f%%)\n", //nolint:errcheck
			*s.ImprovementBest, *s.ImprovementAvgDelta)
	}
	if s.RegressionWorst != nil {
		fmt.Fprintf(w, "Worst regression: %+.2f%% (avg %+.2f%%)\n", //nolint:errcheck
			*s.RegressionWorst, *s.RegressionAvgDelta)
	}
}

// PrintBottleneckTable renders ranked bottlenecks with their flags.
func PrintBottleneckTable(w io.Writer, ranked []models.BottleneckResult) {
	if len(ranked) == 0 {
		fmt.Fprintf(w, "\nNo bottlenecks detected.\n") //nolint:errcheck
		return
	}

	const nameWidth = 30
	const colImpact = 8
	const colSeverity = 10
	totalWidth := nameWidth + colImpact + colSeverity + 30

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("═", totalWidth)) //nolint:errcheck
	fmt.Fprintf(w, " BOTTLENECKS (by impact)\n")              //nolint:errcheck
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("═", totalWidth)) //nolint:errcheck

	fmt.Fprintf(w, "%s  %s  %s  %s\n", //nolint:errcheck
		padRight("Model", nameWidth),
		padRight("Impact", colImpact),
		padRight("Severity", colSeverity),
		"Flags")
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", totalWidth)) //nolint:errcheck

	for _, b := range ranked {
		flags := strings.Join(b.RegressionFlags, ", ")
		if flags == "" {
			flags = "-"
		}
		fmt.Fprintf(w, "%s  %s  %s  %s\n", //nolint:errcheck
			padRight(truncateName(b.ModelName, nameWidth), nameWidth),
			padRight(fmt.Sprintf("%.2f", b.ImpactScore), colImpact),
			padRight(string(b.Severity), colSeverity),
			flags)
	}
	fmt.Fprintf(w, "\n") //nolint:errcheck
}

// PrintRecommendationTable renders ranked recommendations.
func PrintRecommendationTable(w io.Writer, recs []models.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintf(w, "\nNo recommendations; no optimization rules triggered.\n") //nolint:errcheck
		return
	}

	const nameWidth = 25
	const colRule = 28
	const colPriority = 8
	const colScore = 7
	totalWidth := nameWidth + colRule + colPriority + colScore + 40

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("═", totalWidth)) //nolint:errcheck
	fmt.Fprintf(w, " RECOMMENDATIONS (by priority)\n")        //nolint:errcheck
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("═", totalWidth)) //nolint:errcheck

	fmt.Fprintf(w, "%s  %s  %s  %s  %s\n", //nolint:errcheck
		padRight("Model", nameWidth),
		padRight("Rule", colRule),
		padRight("Priority", colPriority),
		padRight("Score", colScore),
		"Technique")
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", totalWidth)) //nolint:errcheck

	for _, r := range recs {
		fmt.Fprintf(w, "%s  %s  %s  %s  %s\n", //nolint:errcheck
			padRight(truncateName(r.ModelName, nameWidth), nameWidth),
			padRight(truncateName(r.RuleID, colRule), colRule),
			padRight(string(r.Priority), colPriority),
			padRight(fmt.Sprintf("%.2f", r.PriorityScore), colScore),
			r.OptimizationTechnique)
	}
	fmt.Fprintf(w, "\n") //nolint:errcheck
}

// formatDelta renders the delta cell: a signed percentage for successful
// comparisons, "=" for changes within the equality band, or "n/a".
func formatDelta(r models.DeltaResult) string {
	if r.Delta == nil {
		return "n/a"
	}
	if abs(*r.Delta) < equalityBand {
		return "="
	}
	return fmt.Sprintf("%+.2f%%", *r.Delta)
}

// statusCell renders the status indicator plus any annotation.
func statusCell(r models.DeltaResult) string {
	icon := indicatorNeutral
	switch {
	case r.HasDataDrift():
		icon = indicatorDrift
	case r.Status != models.DeltaSuccess:
		icon = indicatorNeutral
	case r.Direction == models.DirectionImproved:
		icon = indicatorImproved
	case r.Direction == models.DirectionRegressed && r.Delta != nil && abs(*r.Delta) >= equalityBand:
		icon = indicatorRegressed
	}
	if r.Annotation != "" {
		return icon + " " + r.Annotation
	}
	return icon
}

// truncateName shortens a name to maxLen runes, replacing the last rune with "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func sortedMetricNames(deltas map[string]models.DeltaResult) []string {
	names := make([]string, 0, len(deltas))
	for name := range deltas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
