package pricing

import (
	"math"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

// PriceRow recomputes the weight and price of a single row.
func (e Engine) PriceRow(row model.LineItem) model.LineItem {
	row = row.Clone()
	row.Weight = e.Weight(row.Dimensions, row.Material, row.PartType)

	base := finite(row.UnitPrice) * finite(row.Quantity)
	if row.IsAuto {
		// Auto-priced rows never collapse to zero on an unknown weight.
		row.Price = finite(base * math.Max(row.Weight, 1))
	} else {
		row.Price = finite(base)
	}
	return row
}

// PriceAll prices every row in order. The input slice is not modified.
func (e Engine) PriceAll(rows []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(rows))
	for i, row := range rows {
		out[i] = e.PriceRow(row)
	}
	return out
}
