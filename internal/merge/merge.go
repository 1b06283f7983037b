package merge

import (
	"math"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

// MergeFileResults combines rows parsed from several files. Rows sharing a
// (modelNumber, name) key collapse into the first-seen row: quantities and
// weights are summed, and the price is rebuilt from each source's own unit
// price. Output follows first-seen key order. A single file is returned as is.
func MergeFileResults(results [][]model.LineItem) []model.LineItem {
	switch len(results) {
	case 0:
		return []model.LineItem{}
	case 1:
		return results[0]
	}

	index := make(map[model.MergeKey]int)
	merged := make([]model.LineItem, 0)

	for _, rows := range results {
		for _, row := range rows {
			key := row.Key()
			i, ok := index[key]
			if !ok {
				index[key] = len(merged)
				merged = append(merged, row)
				continue
			}

			existing := &merged[i]
			existingQuantity := orZero(existing.Quantity)
			newQuantity := orZero(row.Quantity)

			existing.Price = orZero(existing.UnitPrice)*existingQuantity + orZero(row.UnitPrice)*newQuantity
			existing.Quantity = existingQuantity + newQuantity
			existing.Weight = orZero(existing.Weight) + orZero(row.Weight)
		}
	}

	return merged
}

// ApplyPriceReference overwrites the unit price of every row whose key has a
// strictly positive unit price in reference, and reprices it by quantity.
// Rows without a usable reference are returned untouched.
func ApplyPriceReference(rows, reference []model.LineItem) []model.LineItem {
	prices := make(map[model.MergeKey]float64, len(reference))
	for _, ref := range reference {
		prices[ref.Key()] = ref.UnitPrice
	}

	out := make([]model.LineItem, len(rows))
	for i, row := range rows {
		if price, ok := prices[row.Key()]; ok && orZero(price) > 0 {
			row.UnitPrice = price
			row.Price = price * orZero(row.Quantity)
		}
		out[i] = row
	}
	return out
}

func orZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
