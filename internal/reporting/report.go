// Package reporting renders comparison results for humans: terminal tables,
// JSON documents, and markdown/HTML analysis reports.
package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/dbtbench/dbtbench/internal/models"
)

// AnalysisReport is the complete comparison output document: deltas,
// bottleneck classifications, and recommendations, ready to serialize.
type AnalysisReport struct {
	Pipeline        string                               `json:"pipeline,omitempty"`
	GeneratedAt     string                               `json:"generated_at"`
	BaselinePath    string                               `json:"baseline_path,omitempty"`
	CandidatePath   string                               `json:"candidate_path,omitempty"`
	Deltas          map[string]models.ModelDeltaSet      `json:"deltas"`
	DeltaSummary    models.DeltaSummary                  `json:"delta_summary"`
	Bottlenecks     map[string]models.BottleneckResult   `json:"bottlenecks"`
	RankedModels    []models.BottleneckResult            `json:"ranked_models"`
	Recommendations map[string][]models.Recommendation   `json:"recommendations,omitempty"`
	Summary         *models.RecommendationSummary        `json:"recommendation_summary,omitempty"`
}

// NewAnalysisReport stamps a report with the generation time.
func NewAnalysisReport(pipeline string) *AnalysisReport {
	return &AnalysisReport{
		Pipeline:    pipeline,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// JSON serializes the report as indented JSON.
func (r *AnalysisReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// HasRegressions reports whether any model carries a regression flag.
func (r *AnalysisReport) HasRegressions() bool {
	for _, b := range r.Bottlenecks {
		if len(b.RegressionFlags) > 0 {
			return true
		}
	}
	return false
}

// Markdown renders the report as a markdown document suitable for PR
// comments and archived run summaries.
func (r *AnalysisReport) Markdown() string {
	var b strings.Builder

	b.WriteString("## 📊 dbtbench Comparison Results\n\n")
	if r.Pipeline != "" {
		b.WriteString(fmt.Sprintf("**Pipeline:** %s | ", r.Pipeline))
	}
	statusIcon := "✅ No regressions"
	if r.HasRegressions() {
		statusIcon = "❌ Regressions detected"
	}
	b.WriteString(fmt.Sprintf("**Status:** %s | **Generated:** %s\n\n", statusIcon, r.GeneratedAt))

	s := r.DeltaSummary
	b.WriteString(fmt.Sprintf("- **Models:** %d compared\n", s.TotalModels))
	b.WriteString(fmt.Sprintf("- **Metrics:** %d improved, %d regressed, %d errors\n",
		s.Improvements, s.Regressions, s.Errors))
	if s.RegressionWorst != nil {
		b.WriteString(fmt.Sprintf("- **Worst regression:** %+.2f%%\n", *s.RegressionWorst))
	}
	if s.ImprovementBest != nil {
		b.WriteString(fmt.Sprintf("- **Best improvement:** %+.2f%%\n", *s.ImprovementBest))
	}
	b.WriteString("\n")

	if len(r.RankedModels) > 0 {
		b.WriteString("### Bottlenecks\n\n")
		b.WriteString("| Model | Impact | Severity | Flags |\n")
		b.WriteString("|-------|--------|----------|-------|\n")
		for _, m := range r.RankedModels {
			flags := strings.Join(m.RegressionFlags, ", ")
			if flags == "" {
				flags = "-"
			}
			b.WriteString(fmt.Sprintf("| %s | %.2f | %s | %s |\n",
				m.ModelName, m.ImpactScore, m.Severity, flags))
		}
		b.WriteString("\n")
	}

	driftModels := r.driftModelNames()
	if len(driftModels) > 0 {
		b.WriteString("### ⚠️ Data Drift\n\n")
		b.WriteString("Output hashes changed for the following models; verify correctness before trusting performance numbers:\n\n")
		for _, name := range driftModels {
			b.WriteString(fmt.Sprintf("- **%s**\n", name))
		}
		b.WriteString("\n")
	}

	if r.Summary != nil && len(r.Summary.TopRecommendations) > 0 {
		b.WriteString("### Recommendations\n\n")
		b.WriteString(fmt.Sprintf("%d total (%d high, %d medium, %d low priority)\n\n",
			r.Summary.TotalRecommendations,
			r.Summary.HighPriorityCount,
			r.Summary.MediumPriorityCount,
			r.Summary.LowPriorityCount))
		for _, rec := range r.Summary.TopRecommendations {
			b.WriteString(fmt.Sprintf("#### %s — %s (%s, score %.2f)\n\n",
				rec.ModelName, rec.RuleName, rec.Priority, rec.PriorityScore))
			b.WriteString(fmt.Sprintf("**Technique:** %s\n\n", rec.OptimizationTechnique))
			b.WriteString(rec.Rationale + "\n\n")
			if len(rec.SQLPatternSuggestion) > 0 {
				b.WriteString("Suggested patterns:\n\n")
				for _, p := range rec.SQLPatternSuggestion {
					b.WriteString(fmt.Sprintf("- %s\n", p))
				}
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("---\n\n")
	b.WriteString("Generated by dbtbench\n")
	return b.String()
}

// htmlRenderer converts the markdown report to standalone HTML. GFM tables
// are required; raw HTML in rule text stays escaped.
var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
)

// HTML renders the markdown report as an HTML document body.
func (r *AnalysisReport) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(r.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("rendering HTML report: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *AnalysisReport) driftModelNames() []string {
	var names []string
	for name, b := range r.Bottlenecks {
		if b.DataDriftDetected {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
