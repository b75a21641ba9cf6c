// Package pricing converts Snowflake resource usage into credit and dollar
// estimates. Estimates are deterministic given the same inputs; they are a
// comparison signal between runs, not a billing reconciliation.
package pricing

import (
	"fmt"
	"math"
	"strings"
)

// Edition selects a cost-per-credit tier.
type Edition string

const (
	EditionStandard   Edition = "standard"
	EditionEnterprise Edition = "enterprise"
)

// Cost-per-credit defaults in USD, matching Snowflake's published list
// prices.
const (
	StandardCostPerCredit   = 2.00
	EnterpriseCostPerCredit = 3.00
)

// bytesPerCreditDivisor converts bytes scanned to credits: 1 GiB of scanned
// data costs 0.1 credits under this model.
const bytesPerCreditDivisor = 10

// WarehouseSize is a Snowflake warehouse T-shirt size.
type WarehouseSize string

const (
	WarehouseXSmall  WarehouseSize = "XS"
	WarehouseSmall   WarehouseSize = "S"
	WarehouseMedium  WarehouseSize = "M"
	WarehouseLarge   WarehouseSize = "L"
	WarehouseXLarge  WarehouseSize = "XL"
	Warehouse2XLarge WarehouseSize = "2XL"
)

// creditsPerMinute holds credit burn rates by warehouse size, expressed as
// credits per minute of runtime.
var creditsPerMinute = map[WarehouseSize]float64{
	WarehouseXSmall:  1,
	WarehouseSmall:   2,
	WarehouseMedium:  4,
	WarehouseLarge:   8,
	WarehouseXLarge:  16,
	Warehouse2XLarge: 32,
}

// Calculator estimates credits and cost from query statistics.
type Calculator struct {
	costPerCredit float64
}

// NewCalculator creates a calculator for the given edition. Unknown editions
// fall back to standard pricing.
func NewCalculator(edition Edition) *Calculator {
	cpc := StandardCostPerCredit
	if edition == EditionEnterprise {
		cpc = EnterpriseCostPerCredit
	}
	return &Calculator{costPerCredit: cpc}
}

// NewCalculatorWithRate creates a calculator with an explicit cost per
// credit, for configurations that override the published tiers.
func NewCalculatorWithRate(costPerCredit float64) *Calculator {
	return &Calculator{costPerCredit: costPerCredit}
}

// CostPerCredit returns the configured USD rate.
func (c *Calculator) CostPerCredit() float64 {
	return c.costPerCredit
}

// CreditsFromBytes estimates credits consumed from bytes scanned:
// GiB / 10, rounded to 4 decimals. Negative input is treated as zero.
func CreditsFromBytes(bytesScanned int64) float64 {
	if bytesScanned <= 0 {
		return 0
	}
	gib := float64(bytesScanned) / (1024 * 1024 * 1024)
	return round(gib/bytesPerCreditDivisor, 4)
}

// CostFromCredits converts credits to USD at the calculator's rate, rounded
// to 2 decimals (cents).
func (c *Calculator) CostFromCredits(credits float64) float64 {
	if credits <= 0 {
		return 0
	}
	return round(credits*c.costPerCredit, 2)
}

// EstimateCost is the bytes-to-dollars shortcut.
func (c *Calculator) EstimateCost(bytesScanned int64) float64 {
	return c.CostFromCredits(CreditsFromBytes(bytesScanned))
}

// RuntimeCredits estimates credits from wall-clock runtime on a warehouse
// of the given size: (seconds / 60) * credits-per-minute, rounded to 6
// decimals. Unknown sizes are an error rather than a silent XS fallback.
func RuntimeCredits(runtimeSeconds float64, size WarehouseSize) (float64, error) {
	cpm, ok := creditsPerMinute[size]
	if !ok {
		return 0, fmt.Errorf("unknown warehouse size %q", size)
	}
	if runtimeSeconds <= 0 {
		return 0, nil
	}
	return round(runtimeSeconds/60*cpm, 6), nil
}

// ParseWarehouseSize normalizes a user-supplied size string.
func ParseWarehouseSize(s string) (WarehouseSize, error) {
	size := WarehouseSize(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := creditsPerMinute[size]; !ok {
		return "", fmt.Errorf("unknown warehouse size %q (valid: XS, S, M, L, XL, 2XL)", s)
	}
	return size, nil
}

func round(f float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(f*pow) / pow
}
