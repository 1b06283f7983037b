package estimate

import (
	"context"
	"slices"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/model"
	"github.com/munakata1001/mitumorisyo/internal/pricing"
	"github.com/munakata1001/mitumorisyo/internal/validate"
)

// RowPatch is a partial row edit. Weight and price are derived and cannot be
// set directly.
type RowPatch struct {
	ModelNumber *string              `json:"modelNumber,omitempty"`
	Name        *string              `json:"name,omitempty"`
	PartType    *string              `json:"partType,omitempty"`
	Material    *string              `json:"material,omitempty"`
	Dimensions  *model.DimensionData `json:"dimensions,omitempty"`
	Quantity    *float64             `json:"quantity,omitempty"`
	UnitPrice   *float64             `json:"unitPrice,omitempty"`
	AutoDisplay *bool                `json:"autoDisplay,omitempty"`
	IsAuto      *bool                `json:"isAuto,omitempty"`
}

func (p RowPatch) apply(row model.LineItem) model.LineItem {
	if p.ModelNumber != nil {
		row.ModelNumber = *p.ModelNumber
	}
	if p.Name != nil {
		row.Name = *p.Name
	}
	if p.PartType != nil {
		row.PartType = *p.PartType
	}
	if p.Material != nil {
		row.Material = *p.Material
	}
	if p.Dimensions != nil {
		row.Dimensions = p.Dimensions.Clone()
	}
	if p.Quantity != nil {
		row.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		row.UnitPrice = *p.UnitPrice
	}
	if p.AutoDisplay != nil {
		row.AutoDisplay = *p.AutoDisplay
	}
	if p.IsAuto != nil {
		row.IsAuto = *p.IsAuto
	}
	return row
}

// TableData returns the stored rows of an estimate.
func (s *Service) TableData(ctx context.Context, id string) ([]model.LineItem, error) {
	est, err := s.estimates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return est.TableData, nil
}

// ReplaceTableData swaps every row of an estimate.
func (s *Service) ReplaceTableData(ctx context.Context, id string, rows []model.LineItem) (pricing.Result, error) {
	if err := validate.Rows(rows).Err("明細の入力内容に誤りがあります"); err != nil {
		return pricing.Result{}, err
	}
	est, err := s.mutate(ctx, id, TriggerTable, func(est *model.Estimate) error {
		est.TableData = s.stampRows(rows, s.now().UTC())
		return nil
	})
	if err != nil {
		return pricing.Result{}, err
	}
	return pricing.Result{Rows: est.TableData, CostCalculation: est.CostCalculation}, nil
}

// AddRow appends a blank row with quantity 1.
func (s *Service) AddRow(ctx context.Context, id string) (model.LineItem, error) {
	var added model.LineItem
	est, err := s.mutate(ctx, id, TriggerRow, func(est *model.Estimate) error {
		now := s.now().UTC()
		added = model.LineItem{ID: s.newID(), Quantity: 1, CreatedAt: now, UpdatedAt: now}
		est.TableData = append(est.TableData, added)
		return nil
	})
	if err != nil {
		return model.LineItem{}, err
	}
	return est.TableData[len(est.TableData)-1], nil
}

// UpdateRow applies a partial edit to one row.
func (s *Service) UpdateRow(ctx context.Context, id, rowID string, patch RowPatch) (model.LineItem, error) {
	var updatedIndex int
	est, err := s.mutate(ctx, id, TriggerRow, func(est *model.Estimate) error {
		i := rowIndex(est.TableData, rowID)
		if i < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "明細行が見つかりません")
		}
		row := patch.apply(est.TableData[i])
		if err := validate.Rows([]model.LineItem{row}).Err("明細の入力内容に誤りがあります"); err != nil {
			return err
		}
		row.UpdatedAt = s.now().UTC()
		est.TableData[i] = row
		updatedIndex = i
		return nil
	})
	if err != nil {
		return model.LineItem{}, err
	}
	return est.TableData[updatedIndex], nil
}

// DeleteRow removes one row.
func (s *Service) DeleteRow(ctx context.Context, id, rowID string) (model.CostSummary, error) {
	est, err := s.mutate(ctx, id, TriggerRow, func(est *model.Estimate) error {
		i := rowIndex(est.TableData, rowID)
		if i < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "明細行が見つかりません")
		}
		est.TableData = slices.Delete(est.TableData, i, i+1)
		return nil
	})
	if err != nil {
		return model.CostSummary{}, err
	}
	return est.CostCalculation, nil
}

func rowIndex(rows []model.LineItem, rowID string) int {
	return slices.IndexFunc(rows, func(r model.LineItem) bool { return r.ID == rowID })
}
