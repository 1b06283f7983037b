package estimate

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/model"
	"github.com/munakata1001/mitumorisyo/internal/validate"
)

func (s *Service) ListTemplates(ctx context.Context) ([]model.Template, error) {
	return s.templates.ListTemplates(ctx)
}

func (s *Service) GetTemplate(ctx context.Context, id string) (model.Template, error) {
	return s.templates.GetTemplate(ctx, id)
}

// SaveTemplate creates or replaces a template. Only the input columns of the
// rows are kept; derived and provenance fields are cleared.
func (s *Service) SaveTemplate(ctx context.Context, tpl model.Template) (model.Template, error) {
	tpl.Name = strings.TrimSpace(tpl.Name)
	if tpl.Name == "" {
		return model.Template{}, pkgerrors.New(pkgerrors.CodeValidation, "テンプレート名は必須です")
	}
	if err := validate.Rows(tpl.TableData).Err("明細の入力内容に誤りがあります"); err != nil {
		return model.Template{}, err
	}

	now := s.now().UTC()
	if tpl.ID == "" {
		tpl.ID = s.newID()
	}
	tpl.CreatedAt = now
	if existing, err := s.templates.GetTemplate(ctx, tpl.ID); err == nil {
		tpl.CreatedAt = existing.CreatedAt
	} else if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return model.Template{}, err
	}
	tpl.UpdatedAt = now

	rows := make([]model.LineItem, len(tpl.TableData))
	for i, row := range tpl.TableData {
		rows[i] = templateRow(row)
		if rows[i].ID == "" {
			rows[i].ID = s.newID()
		}
	}
	tpl.TableData = rows

	if err := s.templates.PutTemplate(ctx, tpl); err != nil {
		return model.Template{}, err
	}
	s.log.Info(s.log.WithField(ctx, "template_id", tpl.ID), "template saved")
	return tpl, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	return s.templates.DeleteTemplate(ctx, id)
}

// ApplyTemplate loads the rows of a template into an estimate. With an empty
// estimateID a new draft estimate without an estimate number is created.
// Rows get fresh ids.
func (s *Service) ApplyTemplate(ctx context.Context, templateID, estimateID string) (model.Estimate, error) {
	tpl, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return model.Estimate{}, err
	}

	rows := make([]model.LineItem, len(tpl.TableData))
	for i, row := range tpl.TableData {
		row = templateRow(row)
		row.ID = ""
		rows[i] = row
	}

	if estimateID == "" {
		// Drafts get their estimate number later through the project info.
		return s.save(ctx, model.Estimate{TemplateID: tpl.ID, TableData: rows}, false)
	}
	return s.mutate(ctx, estimateID, TriggerTemplate, func(est *model.Estimate) error {
		est.TemplateID = tpl.ID
		est.TableData = s.stampRows(rows, s.now().UTC())
		return nil
	})
}

// MarkTemplateDiff flags every row that has no identical input counterpart
// in the template rows. Rows are matched by (modelNumber, name).
func MarkTemplateDiff(rows, template []model.LineItem) {
	byKey := make(map[model.MergeKey]model.LineItem, len(template))
	for _, row := range template {
		if _, ok := byKey[row.Key()]; !ok {
			byKey[row.Key()] = row
		}
	}
	for i := range rows {
		tplRow, ok := byKey[rows[i].Key()]
		rows[i].IsTemplateDiff = !ok || !sameInputs(rows[i], tplRow)
	}
}

func sameInputs(a, b model.LineItem) bool {
	return a.PartType == b.PartType &&
		a.Material == b.Material &&
		a.Quantity == b.Quantity &&
		a.UnitPrice == b.UnitPrice &&
		a.IsAuto == b.IsAuto &&
		a.Dimensions.Equal(b.Dimensions)
}

func templateRow(row model.LineItem) model.LineItem {
	row = row.Clone()
	row.Weight = 0
	row.Price = 0
	row.IsAutoInput = false
	row.IsTemplateDiff = false
	row.CreatedAt = time.Time{}
	row.UpdatedAt = time.Time{}
	return row
}
