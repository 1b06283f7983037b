package pricing

import "github.com/munakata1001/mitumorisyo/internal/model"

// Compose combines automatic and manual costs into the cost summary.
func Compose(auto model.AutomaticCosts, manual model.ManualCosts) model.CostSummary {
	manual = model.ManualCosts{
		ExternalInspectionCost: finite(manual.ExternalInspectionCost),
		TransportationCost:     finite(manual.TransportationCost),
		FactoryInspectionCost:  finite(manual.FactoryInspectionCost),
		DesignCost:             finite(manual.DesignCost),
	}

	auto = model.AutomaticCosts{
		MaterialCost:   finite(auto.MaterialCost),
		ProcessingCost: finite(auto.ProcessingCost),
		PaintingCost:   finite(auto.PaintingCost),
		PaintingArea:   finite(auto.PaintingArea),
	}

	total := finite(auto.MaterialCost +
		auto.ProcessingCost +
		auto.PaintingCost +
		manual.ExternalInspectionCost +
		manual.TransportationCost +
		manual.FactoryInspectionCost +
		manual.DesignCost)

	return model.CostSummary{
		AutomaticCosts:    auto,
		ManualCosts:       manual,
		DirectCost:        total * DirectCostRatio,
		ManufacturingCost: total * ManufacturingCostRatio,
		TotalCost:         total,
	}
}
