package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dbtbench/dbtbench/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one comparison run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one model.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a model that regressed beyond its thresholds.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a data-drift detection, which is a correctness
// problem rather than a performance one.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a model that could not be compared.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts an AnalysisReport to JUnit XML format so CI
// systems can surface per-model regressions as test failures. Data drift
// maps to an error, threshold regressions to a failure, and new/removed
// models to a skip.
func ConvertToJUnit(report *AnalysisReport) *JUnitTestSuites {
	suiteName := report.Pipeline
	if suiteName == "" {
		suiteName = "dbtbench"
	}

	suite := JUnitTestSuite{
		Name:      suiteName,
		Timestamp: report.GeneratedAt,
		Properties: []JUnitProperty{
			{Name: "baseline", Value: report.BaselinePath},
			{Name: "candidate", Value: report.CandidatePath},
			{Name: "models_compared", Value: fmt.Sprintf("%d", report.DeltaSummary.TotalModels)},
		},
	}

	for _, name := range sortedSetNames(report.Deltas) {
		set := report.Deltas[name]
		tc := JUnitTestCase{Name: name, Classname: suiteName}

		if !set.Compared() {
			tc.Skipped = &JUnitSkipped{Message: string(set.Status)}
			suite.Skipped++
			suite.TestCases = append(suite.TestCases, tc)
			continue
		}

		b, analyzed := report.Bottlenecks[name]
		switch {
		case analyzed && b.DataDriftDetected:
			suite.Errors++
			tc.Error = &JUnitError{
				Message: "output data drift detected",
				Type:    "DataDrift",
				Body:    formatRegressionBody(b),
			}
		case analyzed && len(b.RegressionFlags) > 0:
			suite.Failures++
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: impact=%.2f severity=%s", name, b.ImpactScore, b.Severity),
				Type:    "PerformanceRegression",
				Body:    formatRegressionBody(b),
			}
		}
		suite.TestCases = append(suite.TestCases, tc)
	}
	suite.Tests = len(suite.TestCases)

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func formatRegressionBody(b models.BottleneckResult) string {
	var sb strings.Builder
	for _, flag := range b.RegressionFlags {
		sb.WriteString("[" + flag + "]")
	}
	sb.WriteString("\n")

	metrics := make([]string, 0, len(b.RegressionAmounts))
	for metric := range b.RegressionAmounts {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)
	for _, metric := range metrics {
		sb.WriteString(fmt.Sprintf("%s: +%.2f%%\n", metric, b.RegressionAmounts[metric]))
	}
	return sb.String()
}

func sortedSetNames(sets map[string]models.ModelDeltaSet) []string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(report *AnalysisReport, path string) error {
	data, err := MarshalJUnitXML(report)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MarshalJUnitXML renders the JUnit XML document.
func MarshalJUnitXML(report *AnalysisReport) ([]byte, error) {
	suites := ConvertToJUnit(report)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JUnit XML: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
