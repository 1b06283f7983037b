package pricing

import (
	"math"
	"strings"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

// FallbackDensity is used for materials missing from the density table
// (carbon steel, kg/m³).
const FallbackDensity = 7850.0

// Fixed rates of the cost model, in yen.
const (
	PaintingRatePerSquareMeter = 5000.0
	ProcessingRatePerKilogram  = 1000.0
	ProcessSetupCost           = 5000.0

	DirectCostRatio        = 0.7
	ManufacturingCostRatio = 0.9
)

// DensityTable maps a material name to its density in kg/m³.
type DensityTable map[string]float64

// DefaultDensities returns the built-in material table.
func DefaultDensities() DensityTable {
	return DensityTable{
		"SUS304": 7930,
		"SUS316": 8000,
		"炭素鋼":    7850,
		"アルミ":    2700,
		"アルミニウム": 2700,
	}
}

// Density resolves a material, falling back to carbon steel for unknown,
// empty or non-positive entries.
func (t DensityTable) Density(material string) float64 {
	if d := model.PositiveValue(t[strings.TrimSpace(material)]); d > 0 {
		return d
	}
	return FallbackDensity
}

// Engine prices rows against a density table. The zero value uses the
// fallback density for every material.
type Engine struct {
	densities DensityTable
}

// NewEngine returns an engine bound to densities. A nil table selects
// DefaultDensities.
func NewEngine(densities DensityTable) Engine {
	if densities == nil {
		densities = DefaultDensities()
	}
	return Engine{densities: densities}
}

var defaultEngine = NewEngine(nil)

// ComputeWeight computes a weight with the built-in density table.
func ComputeWeight(dims model.DimensionData, material, partType string) float64 {
	return defaultEngine.Weight(dims, material, partType)
}

// PriceAll prices rows with the built-in density table.
func PriceAll(rows []model.LineItem) []model.LineItem {
	return defaultEngine.PriceAll(rows)
}

// RecalculateEverything runs a full pass with the built-in density table.
func RecalculateEverything(rows []model.LineItem, manual model.ManualCosts) Result {
	return defaultEngine.RecalculateEverything(rows, manual)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
