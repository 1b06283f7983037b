package pricing

import (
	"math"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

const cubicMillimetersPerCubicMeter = 1e9

// Weight returns the weight in kg of a part, or 0 when the part type has no
// formula, a required dimension is missing or the result overflows.
func (e Engine) Weight(dims model.DimensionData, material, partType string) float64 {
	return finite(e.rawWeight(dims, material, partType))
}

func (e Engine) rawWeight(dims model.DimensionData, material, partType string) float64 {
	switch s := dims.Shape(partType).(type) {
	case model.SheetMetal:
		if s.Length == 0 || s.Width == 0 || s.Thickness == 0 {
			return 0
		}
		volume := s.Length * s.Width * s.Thickness / cubicMillimetersPerCubicMeter
		return volume * e.densities.Density(material)
	case model.Cylinder:
		if s.Diameter == 0 || s.Height == 0 {
			return 0
		}
		radius := s.Diameter / 2
		volume := math.Pi * radius * radius * s.Height / cubicMillimetersPerCubicMeter
		return volume * e.densities.Density(material)
	default:
		return 0
	}
}
