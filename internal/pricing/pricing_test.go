package pricing

import (
	"math"
	"testing"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func sheetMetal(l, w, th float64) model.DimensionData {
	return model.DimensionData{
		PartType:  model.PartTypeSheetMetal,
		Length:    model.Float(l),
		Width:     model.Float(w),
		Thickness: model.Float(th),
	}
}

func TestComputeWeight_SheetMetalSUS304(t *testing.T) {
	got := ComputeWeight(sheetMetal(1000, 500, 10), "SUS304", model.PartTypeSheetMetal)
	nearlyEqual(t, "weight", got, 39.65)
}

func TestComputeWeight_SheetMetalMissingThickness(t *testing.T) {
	dims := model.DimensionData{Length: model.Float(1000), Width: model.Float(500)}
	nearlyEqual(t, "weight", ComputeWeight(dims, "SUS304", model.PartTypeSheetMetal), 0)
}

func TestComputeWeight_JapaneseSheetMetalAlias(t *testing.T) {
	got := ComputeWeight(sheetMetal(1000, 1000, 1), "アルミ", "板金")
	nearlyEqual(t, "weight", got, 2.7)
}

func TestComputeWeight_CylinderUnknownMaterialFallsBack(t *testing.T) {
	dims := model.DimensionData{Diameter: model.Float(100), Height: model.Float(1000)}
	want := math.Pi * 50 * 50 * 1000 / 1e9 * FallbackDensity
	nearlyEqual(t, "weight", ComputeWeight(dims, "unobtainium", model.PartTypeCylinder), want)
}

func TestComputeWeight_CylinderMissingHeight(t *testing.T) {
	dims := model.DimensionData{Diameter: model.Float(100)}
	nearlyEqual(t, "weight", ComputeWeight(dims, "SUS316", model.PartTypeCylinder), 0)
}

func TestComputeWeight_OtherPartTypeIsManual(t *testing.T) {
	nearlyEqual(t, "weight", ComputeWeight(sheetMetal(1000, 500, 10), "SUS304", "casting"), 0)
}

func TestComputeWeight_NonFiniteDimensionsDegradeToZero(t *testing.T) {
	dims := sheetMetal(math.Inf(1), 500, 10)
	nearlyEqual(t, "weight", ComputeWeight(dims, "SUS304", model.PartTypeSheetMetal), 0)
}

func TestEngine_CustomDensityTable(t *testing.T) {
	e := NewEngine(DensityTable{"Ti": 4500, "broken": -1})

	nearlyEqual(t, "titanium", e.Weight(sheetMetal(1000, 1000, 1), "Ti", model.PartTypeSheetMetal), 4.5)
	nearlyEqual(t, "broken", e.Weight(sheetMetal(1000, 1000, 1), "broken", model.PartTypeSheetMetal), 7.85)
}

func TestPriceRow_AutoFloorOnUnknownWeight(t *testing.T) {
	row := model.LineItem{PartType: "casting", UnitPrice: 100, Quantity: 2, IsAuto: true}

	priced := defaultEngine.PriceRow(row)

	nearlyEqual(t, "weight", priced.Weight, 0)
	nearlyEqual(t, "price", priced.Price, 200)
}

func TestPriceRow_AutoUsesWeight(t *testing.T) {
	row := model.LineItem{
		PartType:   model.PartTypeSheetMetal,
		Material:   "SUS304",
		Dimensions: sheetMetal(1000, 500, 10),
		UnitPrice:  100,
		Quantity:   2,
		IsAuto:     true,
	}

	priced := defaultEngine.PriceRow(row)

	nearlyEqual(t, "price", priced.Price, 100*2*39.65)
}

func TestPriceRow_ManualIgnoresWeight(t *testing.T) {
	row := model.LineItem{
		PartType:   model.PartTypeSheetMetal,
		Material:   "SUS304",
		Dimensions: sheetMetal(1000, 500, 10),
		UnitPrice:  100,
		Quantity:   3,
		Weight:     999,
		Price:      1,
	}

	priced := defaultEngine.PriceRow(row)

	nearlyEqual(t, "weight", priced.Weight, 39.65)
	nearlyEqual(t, "price", priced.Price, 300)
}

func TestPriceAll_PreservesOrderAndInput(t *testing.T) {
	rows := []model.LineItem{
		{ID: "a", UnitPrice: 10, Quantity: 1, Price: 7},
		{ID: "b", UnitPrice: 20, Quantity: 2},
	}

	out := PriceAll(rows)

	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", out)
	}
	nearlyEqual(t, "input price untouched", rows[0].Price, 7)
	nearlyEqual(t, "price a", out[0].Price, 10)
	nearlyEqual(t, "price b", out[1].Price, 40)
}

func TestComputeWeight_OverflowDegradesToZero(t *testing.T) {
	got := ComputeWeight(sheetMetal(1e200, 1e200, 1), "SUS304", model.PartTypeSheetMetal)
	nearlyEqual(t, "weight", got, 0)
}

func TestRecalculateEverything_OverflowingRowDoesNotPoisonTotals(t *testing.T) {
	huge := model.LineItem{
		PartType:   model.PartTypeSheetMetal,
		Material:   "SUS304",
		Dimensions: sheetMetal(1e200, 1e200, 1),
		Quantity:   1,
		UnitPrice:  1e300,
		IsAuto:     true,
	}
	normal := model.LineItem{
		PartType:   model.PartTypeSheetMetal,
		Material:   "SUS304",
		Dimensions: sheetMetal(1000, 500, 10),
		Quantity:   1,
		UnitPrice:  100,
		IsAuto:     true,
	}

	res := RecalculateEverything([]model.LineItem{huge, normal, {Quantity: math.MaxFloat64, UnitPrice: math.MaxFloat64}}, model.ManualCosts{})

	for i, row := range res.Rows {
		if math.IsInf(row.Weight, 0) || math.IsInf(row.Price, 0) {
			t.Fatalf("row %d not finite: weight=%v price=%v", i, row.Weight, row.Price)
		}
	}
	nearlyEqual(t, "normal weight", res.Rows[1].Weight, 39.65)
	nearlyEqual(t, "overflowing price", res.Rows[2].Price, 0)

	c := res.CostCalculation
	for name, v := range map[string]float64{
		"materialCost":   c.MaterialCost,
		"processingCost": c.ProcessingCost,
		"paintingCost":   c.PaintingCost,
		"totalCost":      c.TotalCost,
		"directCost":     c.DirectCost,
	} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Fatalf("%s = %v, want finite", name, v)
		}
	}
}
