package pricing

import (
	"math"
	"reflect"
	"testing"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

func sampleRows() []model.LineItem {
	return []model.LineItem{
		{
			ID:         "plate",
			PartType:   model.PartTypeSheetMetal,
			Material:   "SUS304",
			Quantity:   2,
			UnitPrice:  1200,
			IsAuto:     true,
			Weight:     12345,
			Dimensions: model.DimensionData{Length: model.Float(1000), Width: model.Float(500), Thickness: model.Float(10), Height: model.Float(300)},
		},
		{
			ID:         "shaft",
			PartType:   model.PartTypeCylinder,
			Material:   "SUS316",
			Quantity:   1,
			UnitPrice:  800,
			Dimensions: model.DimensionData{Diameter: model.Float(60), Height: model.Float(400)},
		},
		{ID: "bolt", PartType: "bolt", Quantity: 40, UnitPrice: 15},
	}
}

func TestRecalculateEverything_Empty(t *testing.T) {
	res := RecalculateEverything(nil, model.ManualCosts{DesignCost: 100})

	if len(res.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(res.Rows))
	}
	nearlyEqual(t, "materialCost", res.CostCalculation.MaterialCost, 0)
	nearlyEqual(t, "total", res.CostCalculation.TotalCost, 100)
}

func TestRecalculateEverything_FixedPoint(t *testing.T) {
	manual := model.ManualCosts{ExternalInspectionCost: 5000, TransportationCost: 12000}

	first := RecalculateEverything(sampleRows(), manual)
	second := RecalculateEverything(first.Rows, first.CostCalculation.ManualCosts)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second pass differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRecalculateEverything_OverwritesStaleDerivedFields(t *testing.T) {
	res := RecalculateEverything(sampleRows(), model.ManualCosts{})

	nearlyEqual(t, "plate weight", res.Rows[0].Weight, 39.65)
	nearlyEqual(t, "plate price", res.Rows[0].Price, 1200*2*39.65)
	nearlyEqual(t, "bolt price", res.Rows[2].Price, 600)
}

func TestRecalculateEverything_SummaryEquation(t *testing.T) {
	manual := model.ManualCosts{ExternalInspectionCost: 1, TransportationCost: 2, FactoryInspectionCost: 3, DesignCost: 4}
	c := RecalculateEverything(sampleRows(), manual).CostCalculation

	sum := c.MaterialCost + c.ProcessingCost + c.PaintingCost +
		c.ExternalInspectionCost + c.TransportationCost + c.FactoryInspectionCost + c.DesignCost
	nearlyEqual(t, "total", c.TotalCost, sum)
	nearlyEqual(t, "direct", c.DirectCost, 0.7*c.TotalCost)
	nearlyEqual(t, "manufacturing", c.ManufacturingCost, 0.9*c.TotalCost)
}

func TestRecalculateEverything_NonFiniteManualCostBecomesZero(t *testing.T) {
	c := RecalculateEverything(nil, model.ManualCosts{DesignCost: math.NaN()}).CostCalculation

	nearlyEqual(t, "design", c.DesignCost, 0)
	nearlyEqual(t, "total", c.TotalCost, 0)
}
