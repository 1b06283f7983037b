package pricing

import (
	"strings"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

const squareMillimetersPerSquareMeter = 1e6

// Aggregate reduces priced rows into the automatic cost categories.
func Aggregate(rows []model.LineItem) model.AutomaticCosts {
	var (
		materialCost float64
		totalWeight  float64
		paintingArea float64
	)
	partTypes := make(map[string]struct{})

	for _, row := range rows {
		materialCost += finite(row.Price)
		totalWeight += finite(row.Weight)
		paintingArea += PaintingArea(row)

		if strings.TrimSpace(row.PartType) != "" {
			partTypes[row.PartType] = struct{}{}
		}
	}

	paintingArea = finite(paintingArea)
	return model.AutomaticCosts{
		MaterialCost:   finite(materialCost),
		ProcessingCost: finite(finite(totalWeight)*ProcessingRatePerKilogram + float64(len(partTypes))*ProcessSetupCost),
		PaintingCost:   finite(paintingArea * PaintingRatePerSquareMeter),
		PaintingArea:   paintingArea,
	}
}

// PaintingArea returns the six-face surface area in m² of a sheet-metal row,
// multiplied by its quantity. Other rows contribute 0.
func PaintingArea(row model.LineItem) float64 {
	s, ok := row.Dimensions.Shape(row.PartType).(model.SheetMetal)
	if !ok || s.Length == 0 || s.Width == 0 || s.Height == 0 {
		return 0
	}
	l, w, h := s.Length, s.Width, s.Height
	area := 2 * (l*w + w*h + h*l) / squareMillimetersPerSquareMeter
	return finite(area * finite(row.Quantity))
}
