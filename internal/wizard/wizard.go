// Package wizard collects comparison settings interactively and renders the
// .dbtbench.yaml configuration file.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/dbtbench/dbtbench/internal/pricing"
)

// Settings holds all fields collected during the interactive wizard.
type Settings struct {
	Pipeline               string
	ExecutionTimeThreshold float64
	CostThreshold          float64
	Edition                pricing.Edition
	TopN                   int
}

const configTemplate = `# dbtbench configuration
pipeline: {{ .Pipeline }}

thresholds:
  execution_time: {{ .ExecutionTimeThreshold }}
  cost: {{ .CostThreshold }}

pricing:
  {{ .Edition }}:
    cost_per_credit: {{ .CostPerCredit }}

top_n: {{ .TopN }}
`

// Run runs an interactive huh form to collect comparison settings.
// If initialPipeline is non-empty, it pre-populates the pipeline field.
func Run(in io.Reader, out io.Writer, initialPipeline string) (*Settings, error) {
	var (
		pipeline   = initialPipeline
		timeRaw    = "10"
		costRaw    = "20"
		editionRaw = string(pricing.EditionStandard)
		topNRaw    = "10"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Pipeline name").
				Description("An identifier for the dbt pipeline under comparison").
				Placeholder("my-pipeline").
				Value(&pipeline).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("pipeline name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Execution time regression threshold (%)").
				Description("Deltas above this percentage flag a time regression").
				Value(&timeRaw).
				Validate(validatePositiveFloat),
			huh.NewInput().
				Title("Cost regression threshold (%)").
				Description("Deltas above this percentage flag a cost regression").
				Value(&costRaw).
				Validate(validatePositiveFloat),
			huh.NewSelect[string]().
				Title("Snowflake edition").
				Options(
					huh.NewOption("standard ($2.00/credit)", string(pricing.EditionStandard)),
					huh.NewOption("enterprise ($3.00/credit)", string(pricing.EditionEnterprise)),
				).
				Value(&editionRaw),
			huh.NewInput().
				Title("Top N recommendations").
				Description("How many recommendations to keep in the summary").
				Value(&topNRaw).
				Validate(validatePositiveInt),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	timeThreshold, _ := strconv.ParseFloat(strings.TrimSpace(timeRaw), 64)
	costThreshold, _ := strconv.ParseFloat(strings.TrimSpace(costRaw), 64)
	topN, _ := strconv.Atoi(strings.TrimSpace(topNRaw))

	return &Settings{
		Pipeline:               strings.TrimSpace(pipeline),
		ExecutionTimeThreshold: timeThreshold,
		CostThreshold:          costThreshold,
		Edition:                pricing.Edition(editionRaw),
		TopN:                   topN,
	}, nil
}

// GenerateConfigYAML renders a .dbtbench.yaml from the given settings.
func GenerateConfigYAML(s *Settings) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	costPerCredit := pricing.StandardCostPerCredit
	if s.Edition == pricing.EditionEnterprise {
		costPerCredit = pricing.EnterpriseCostPerCredit
	}

	var buf strings.Builder
	err = tmpl.Execute(&buf, struct {
		*Settings
		CostPerCredit float64
	}{Settings: s, CostPerCredit: costPerCredit})
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func validatePositiveFloat(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if v <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if v <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
