package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreditsFromBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  float64
	}{
		{"zero", 0, 0},
		{"negative", -100, 0},
		{"one_gib", 1 << 30, 0.1},
		{"ten_gib", 10 << 30, 1.0},
		{"half_gib", 1 << 29, 0.05},
		{"rounds_to_4_decimals", 123456789, 0.0115},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CreditsFromBytes(tt.bytes))
		})
	}
}

func TestCostFromCredits(t *testing.T) {
	std := NewCalculator(EditionStandard)
	ent := NewCalculator(EditionEnterprise)

	require.Equal(t, 2.0, std.CostFromCredits(1.0))
	require.Equal(t, 3.0, ent.CostFromCredits(1.0))
	require.Equal(t, 0.0, std.CostFromCredits(0))
	require.Equal(t, 0.0, std.CostFromCredits(-5))
	// rounds to cents
	require.Equal(t, 0.25, std.CostFromCredits(0.1234))
}

func TestNewCalculator_UnknownEditionFallsBack(t *testing.T) {
	c := NewCalculator(Edition("business-critical"))
	require.Equal(t, StandardCostPerCredit, c.CostPerCredit())
}

func TestNewCalculatorWithRate(t *testing.T) {
	c := NewCalculatorWithRate(4.5)
	require.Equal(t, 4.5, c.CostPerCredit())
	require.Equal(t, 9.0, c.CostFromCredits(2.0))
}

func TestEstimateCost(t *testing.T) {
	c := NewCalculator(EditionStandard)
	// 10 GiB -> 1 credit -> $2
	require.Equal(t, 2.0, c.EstimateCost(10<<30))
}

func TestRuntimeCredits(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		size    WarehouseSize
		want    float64
	}{
		{"one_minute_xs", 60, WarehouseXSmall, 1.0},
		{"one_minute_2xl", 60, Warehouse2XLarge, 32.0},
		{"thirty_seconds_medium", 30, WarehouseMedium, 2.0},
		{"zero_runtime", 0, WarehouseLarge, 0},
		{"rounds_to_6_decimals", 1, WarehouseXSmall, 0.016667},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RuntimeCredits(tt.seconds, tt.size)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRuntimeCredits_UnknownSize(t *testing.T) {
	_, err := RuntimeCredits(60, WarehouseSize("4XL"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "4XL")
}

func TestParseWarehouseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    WarehouseSize
		wantErr bool
	}{
		{"XS", WarehouseXSmall, false},
		{"xs", WarehouseXSmall, false},
		{" m ", WarehouseMedium, false},
		{"2xl", Warehouse2XLarge, false},
		{"XXL", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWarehouseSize(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
