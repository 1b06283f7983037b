package estimate

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munakata1001/mitumorisyo/internal/db"
	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/migrations"
	"github.com/munakata1001/mitumorisyo/internal/model"
	"github.com/munakata1001/mitumorisyo/internal/seed"
	"github.com/munakata1001/mitumorisyo/internal/validate"
)

func newTestService(t *testing.T) (*Service, *Store) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "estimate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.Up(context.Background(), database))
	_, err = seed.Run(database)
	require.NoError(t, err)

	var tick atomic.Int64
	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	var ids atomic.Int64

	store := NewStore(database)
	svc := NewService(Deps{
		Estimates: store,
		Templates: store,
		Materials: store,
		Now: func() time.Time {
			return base.Add(time.Duration(tick.Add(1)) * time.Second)
		},
		NewID: func() string { return fmt.Sprintf("id-%03d", ids.Add(1)) },
	})
	return svc, store
}

func plateRow(name string) model.LineItem {
	return model.LineItem{
		ModelNumber: "P-1",
		Name:        name,
		PartType:    model.PartTypeSheetMetal,
		Material:    "SUS304",
		Dimensions: model.DimensionData{
			PartType:  model.PartTypeSheetMetal,
			Length:    model.Float(1000),
			Width:     model.Float(500),
			Thickness: model.Float(10),
		},
		Quantity:  1,
		UnitPrice: 100,
		IsAuto:    true,
	}
}

func numbered(number string, rows ...model.LineItem) model.Estimate {
	return model.Estimate{
		ProjectInfo: model.ProjectInfo{EstimateNumber: number},
		TableData:   rows,
	}
}

func near(t *testing.T, want, got float64) {
	t.Helper()
	assert.LessOrEqual(t, math.Abs(want-got), 1e-9, "want %v, got %v", want, got)
}

func TestSave_AssignsIDsAndDerivedFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	est, err := svc.Save(ctx, model.Estimate{
		ProjectInfo: model.ProjectInfo{EstimateNumber: "E-001", Customer: "Acme"},
		TableData:   []model.LineItem{plateRow("天板")},
	})
	require.NoError(t, err)

	require.NotEmpty(t, est.ID)
	require.Len(t, est.TableData, 1)
	assert.NotEmpty(t, est.TableData[0].ID)
	near(t, 39.65, est.TableData[0].Weight)
	near(t, 3965, est.TableData[0].Price)
	near(t, 3965, est.CostCalculation.MaterialCost)

	loaded, err := svc.Get(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, est.TableData, loaded.TableData)
	assert.Equal(t, est.CostCalculation, loaded.CostCalculation)
	assert.True(t, est.CreatedAt.Equal(loaded.CreatedAt))
}

func TestSave_KeepsCreatedAtOnReplace(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, model.Estimate{ProjectInfo: model.ProjectInfo{EstimateNumber: "E-002"}})
	require.NoError(t, err)

	first.ProjectInfo.Customer = "Updated"
	second, err := svc.Save(ctx, first)
	require.NoError(t, err)

	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestSave_RejectsNegativeQuantity(t *testing.T) {
	svc, _ := newTestService(t)

	row := plateRow("x")
	row.Quantity = -1
	_, err := svc.Save(context.Background(), numbered("E-030", row))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSave_RequiresEstimateNumber(t *testing.T) {
	svc, _ := newTestService(t)

	row := plateRow("x")
	row.UnitPrice = -1
	_, err := svc.Save(context.Background(), numbered("  ", row))
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	violations, ok := appErr.Details().([]validate.Violation)
	require.True(t, ok)
	require.Len(t, violations, 2)
	assert.Equal(t, "projectInfo.estimateNumber", violations[0].Field)
	assert.Equal(t, "見積番号は必須です", violations[0].Message)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = svc.Delete(context.Background(), "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListAndFindByNumber(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, model.Estimate{ProjectInfo: model.ProjectInfo{EstimateNumber: "E-100", Customer: "Acme Corp"}})
	require.NoError(t, err)
	_, err = svc.Save(ctx, model.Estimate{ProjectInfo: model.ProjectInfo{EstimateNumber: "E-200", EquipmentName: "Boiler 50%"}})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "E-200", all[0].ProjectInfo.EstimateNumber)

	found, err := svc.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "E-100", found[0].ProjectInfo.EstimateNumber)

	percent, err := svc.List(ctx, "50%")
	require.NoError(t, err)
	require.Len(t, percent, 1)

	byNumber, err := svc.FindByNumber(ctx, "E-100")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", byNumber.ProjectInfo.Customer)

	_, err = svc.FindByNumber(ctx, "E-999")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRowOperationsRecalculate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	est, err := svc.Save(ctx, numbered("E-010", plateRow("天板")))
	require.NoError(t, err)

	added, err := svc.AddRow(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(1), added.Quantity)

	price := 250.0
	name := "脚"
	updated, err := svc.UpdateRow(ctx, est.ID, added.ID, RowPatch{Name: &name, UnitPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "脚", updated.Name)
	near(t, 250, updated.Price)

	summary, err := svc.CostCalculation(ctx, est.ID)
	require.NoError(t, err)
	near(t, 3965+250, summary.MaterialCost)

	summary, err = svc.DeleteRow(ctx, est.ID, added.ID)
	require.NoError(t, err)
	near(t, 3965, summary.MaterialCost)

	rows, err := svc.TableData(ctx, est.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.UpdateRow(ctx, est.ID, "nope", RowPatch{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestReplaceTableData(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	est, err := svc.Save(ctx, numbered("E-020"))
	require.NoError(t, err)

	res, err := svc.ReplaceTableData(ctx, est.ID, []model.LineItem{plateRow("a"), plateRow("b")})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.NotEqual(t, res.Rows[0].ID, res.Rows[1].ID)
	near(t, 2*3965, res.CostCalculation.MaterialCost)
}

func TestUpdateManualCosts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	est, err := svc.Save(ctx, numbered("E-010", plateRow("天板")))
	require.NoError(t, err)

	design := 10000.0
	summary, err := svc.UpdateManualCosts(ctx, est.ID, model.ManualCostsPatch{DesignCost: &design})
	require.NoError(t, err)
	near(t, 10000, summary.DesignCost)
	near(t, est.CostCalculation.TotalCost+10000, summary.TotalCost)
	near(t, summary.TotalCost*0.7, summary.DirectCost)

	negative := -1.0
	_, err = svc.UpdateManualCosts(ctx, est.ID, model.ManualCostsPatch{TransportationCost: &negative})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	summary, err = svc.CostCalculation(ctx, est.ID)
	require.NoError(t, err)
	near(t, 0, summary.TransportationCost)
}

func TestUpsertMaterialRepricesOnNextMutation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	est, err := svc.Save(ctx, numbered("E-010", plateRow("天板")))
	require.NoError(t, err)

	_, err = svc.UpsertMaterial(ctx, model.Material{Name: "SUS304", Density: 8000})
	require.NoError(t, err)

	res, err := svc.Recalculate(ctx, est.ID)
	require.NoError(t, err)
	near(t, 40, res.Rows[0].Weight)

	_, err = svc.UpsertMaterial(ctx, model.Material{Name: "", Density: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	materials, err := svc.Materials(ctx)
	require.NoError(t, err)
	assert.Len(t, materials, 5)
}

func TestCalculateIsStateless(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Calculate(context.Background(), []model.LineItem{plateRow("a")}, model.ManualCosts{DesignCost: 1})
	require.NoError(t, err)
	near(t, 3965, res.CostCalculation.MaterialCost)
	near(t, 1, res.CostCalculation.DesignCost)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTemplatesApplyAndDiff(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveTemplate(ctx, model.Template{Name: "  "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	tpl, err := svc.SaveTemplate(ctx, model.Template{
		Name:      "標準架台",
		TableData: []model.LineItem{plateRow("天板"), plateRow("側板")},
	})
	require.NoError(t, err)
	near(t, 0, tpl.TableData[0].Weight)

	est, err := svc.ApplyTemplate(ctx, tpl.ID, "")
	require.NoError(t, err)
	require.Len(t, est.TableData, 2)
	assert.Equal(t, tpl.ID, est.TemplateID)
	assert.NotEqual(t, tpl.TableData[0].ID, est.TableData[0].ID)
	assert.False(t, est.TableData[0].IsTemplateDiff)
	near(t, 2*3965, est.CostCalculation.MaterialCost)

	qty := 3.0
	row, err := svc.UpdateRow(ctx, est.ID, est.TableData[1].ID, RowPatch{Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, row.IsTemplateDiff)

	added, err := svc.AddRow(ctx, est.ID)
	require.NoError(t, err)
	assert.True(t, added.IsTemplateDiff)

	list, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteTemplate(ctx, tpl.ID))
	_, err = svc.GetTemplate(ctx, tpl.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	// Orphaned template ids no longer mark rows but do not fail mutations.
	_, err = svc.Recalculate(ctx, est.ID)
	require.NoError(t, err)
}

func TestConcurrentAddRowIsSerialized(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	est, err := svc.Save(ctx, numbered("E-020"))
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddRow(ctx, est.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows, err := svc.TableData(ctx, est.ID)
	require.NoError(t, err)
	assert.Len(t, rows, workers)
}

func TestMarkTemplateDiff(t *testing.T) {
	tpl := []model.LineItem{plateRow("a")}
	rows := []model.LineItem{plateRow("a"), plateRow("b")}
	rows[0].Weight = 99

	MarkTemplateDiff(rows, tpl)
	assert.False(t, rows[0].IsTemplateDiff)
	assert.True(t, rows[1].IsTemplateDiff)
}
