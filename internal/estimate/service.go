package estimate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/logger"
	"github.com/munakata1001/mitumorisyo/internal/metrics"
	"github.com/munakata1001/mitumorisyo/internal/model"
	"github.com/munakata1001/mitumorisyo/internal/pricing"
	"github.com/munakata1001/mitumorisyo/internal/validate"
)

// Repository stores estimates.
type Repository interface {
	Get(ctx context.Context, id string) (model.Estimate, error)
	FindByNumber(ctx context.Context, number string) (model.Estimate, error)
	List(ctx context.Context, query string) ([]model.Estimate, error)
	Put(ctx context.Context, est model.Estimate) error
	Delete(ctx context.Context, id string) error
}

// TemplateRepository stores reusable row templates.
type TemplateRepository interface {
	GetTemplate(ctx context.Context, id string) (model.Template, error)
	ListTemplates(ctx context.Context) ([]model.Template, error)
	PutTemplate(ctx context.Context, tpl model.Template) error
	DeleteTemplate(ctx context.Context, id string) error
}

// MaterialRepository exposes the material density table.
type MaterialRepository interface {
	Densities(ctx context.Context) (pricing.DensityTable, error)
	ListMaterials(ctx context.Context) ([]model.Material, error)
	UpsertMaterial(ctx context.Context, m model.Material) error
}

// Recalculation triggers, used as metric labels.
const (
	TriggerSave      = "save"
	TriggerTable     = "table_data"
	TriggerRow       = "row"
	TriggerManual    = "manual_costs"
	TriggerTemplate  = "template"
	TriggerRequested = "requested"
	TriggerStateless = "stateless"
)

// Deps wires a Service.
type Deps struct {
	Estimates Repository
	Templates TemplateRepository
	Materials MaterialRepository
	Logger    *logger.Logger
	Metrics   *metrics.EstimateMetrics
	Now       func() time.Time
	NewID     func() string
}

// Service owns every estimate mutation. Each mutation re-runs the full
// pricing pass before the estimate is stored, so stored derived fields are
// always consistent with the stored inputs.
type Service struct {
	estimates Repository
	templates TemplateRepository
	materials MaterialRepository
	log       *logger.Logger
	metrics   *metrics.EstimateMetrics
	now       func() time.Time
	newID     func() string
	locks     keyedMutex
}

func NewService(d Deps) *Service {
	s := &Service{
		estimates: d.Estimates,
		templates: d.Templates,
		materials: d.Materials,
		log:       d.Logger,
		metrics:   d.Metrics,
		now:       d.Now,
		newID:     d.NewID,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

// Save creates or replaces an estimate. The estimate number is required.
// Missing ids are generated for the estimate and for every row, and the
// derived fields are recomputed.
func (s *Service) Save(ctx context.Context, est model.Estimate) (model.Estimate, error) {
	return s.save(ctx, est, true)
}

func (s *Service) save(ctx context.Context, est model.Estimate, requireNumber bool) (model.Estimate, error) {
	res := validate.Rows(est.TableData)
	if requireNumber && strings.TrimSpace(est.ProjectInfo.EstimateNumber) == "" {
		res.Violations = append([]validate.Violation{{
			Field:   "projectInfo.estimateNumber",
			Message: "見積番号は必須です",
		}}, res.Violations...)
	}
	if err := res.Err("見積書の入力内容に誤りがあります"); err != nil {
		return model.Estimate{}, err
	}
	if err := validateManual(est.CostCalculation.ManualCosts); err != nil {
		return model.Estimate{}, err
	}

	now := s.now().UTC()
	if est.ID == "" {
		est.ID = s.newID()
	}
	unlock := s.locks.Lock(est.ID)
	defer unlock()

	est.CreatedAt = now
	existing, err := s.estimates.Get(ctx, est.ID)
	switch {
	case err == nil:
		est.CreatedAt = existing.CreatedAt
	case !pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return model.Estimate{}, err
	}

	est.TableData = s.stampRows(est.TableData, now)
	if err := s.recalculate(ctx, &est, TriggerSave); err != nil {
		return model.Estimate{}, err
	}
	est.UpdatedAt = now

	if err := s.estimates.Put(ctx, est); err != nil {
		return model.Estimate{}, err
	}
	s.log.Info(s.log.WithEstimateID(ctx, est.ID), "estimate saved")
	return est, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Estimate, error) {
	return s.estimates.Get(ctx, id)
}

func (s *Service) FindByNumber(ctx context.Context, number string) (model.Estimate, error) {
	return s.estimates.FindByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, query string) ([]model.Estimate, error) {
	return s.estimates.List(ctx, query)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.estimates.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(s.log.WithEstimateID(ctx, id), "estimate deleted")
	return nil
}

// UpdateProjectInfo validates and stores a new estimate header.
func (s *Service) UpdateProjectInfo(ctx context.Context, id string, info model.ProjectInfo) (model.Estimate, error) {
	info = validate.NormalizeProjectInfo(info, s.now())
	if err := validate.ProjectInfo(info).Err("案件情報の入力内容に誤りがあります"); err != nil {
		return model.Estimate{}, err
	}
	return s.mutate(ctx, id, TriggerSave, func(est *model.Estimate) error {
		est.ProjectInfo = info
		return nil
	})
}

// UpdateRemarks replaces the remarks and approval sections.
func (s *Service) UpdateRemarks(ctx context.Context, id string, remarks model.RemarksData, approval model.ApprovalInfo) (model.Estimate, error) {
	return s.mutate(ctx, id, TriggerSave, func(est *model.Estimate) error {
		est.RemarksData = remarks
		est.ApprovalInfo = approval
		return nil
	})
}

// CostCalculation returns the stored cost summary of an estimate.
func (s *Service) CostCalculation(ctx context.Context, id string) (model.CostSummary, error) {
	est, err := s.estimates.Get(ctx, id)
	if err != nil {
		return model.CostSummary{}, err
	}
	return est.CostCalculation, nil
}

// UpdateManualCosts applies a partial manual-cost update and recomposes the
// summary.
func (s *Service) UpdateManualCosts(ctx context.Context, id string, patch model.ManualCostsPatch) (model.CostSummary, error) {
	if err := validatePatch(patch); err != nil {
		return model.CostSummary{}, err
	}
	est, err := s.mutate(ctx, id, TriggerManual, func(est *model.Estimate) error {
		est.CostCalculation.ManualCosts = patch.Apply(est.CostCalculation.ManualCosts)
		return nil
	})
	if err != nil {
		return model.CostSummary{}, err
	}
	return est.CostCalculation, nil
}

// Recalculate re-runs the pricing pass on a stored estimate.
func (s *Service) Recalculate(ctx context.Context, id string) (pricing.Result, error) {
	est, err := s.mutate(ctx, id, TriggerRequested, func(*model.Estimate) error { return nil })
	if err != nil {
		return pricing.Result{}, err
	}
	return pricing.Result{Rows: est.TableData, CostCalculation: est.CostCalculation}, nil
}

// Calculate prices rows that are not stored anywhere, using the current
// density table.
func (s *Service) Calculate(ctx context.Context, rows []model.LineItem, manual model.ManualCosts) (pricing.Result, error) {
	if err := validate.Rows(rows).Err("明細の入力内容に誤りがあります"); err != nil {
		return pricing.Result{}, err
	}
	if err := validateManual(manual); err != nil {
		return pricing.Result{}, err
	}
	engine, err := s.engine(ctx)
	if err != nil {
		return pricing.Result{}, err
	}
	start := time.Now()
	res := engine.RecalculateEverything(rows, manual)
	s.metrics.ObserveRecalculation(TriggerStateless, time.Since(start))
	return res, nil
}

// Materials lists the stored density table.
func (s *Service) Materials(ctx context.Context) ([]model.Material, error) {
	return s.materials.ListMaterials(ctx)
}

// UpsertMaterial stores a density. Stored estimates are not repriced until
// their next mutation.
func (s *Service) UpsertMaterial(ctx context.Context, m model.Material) (model.Material, error) {
	if err := validate.Struct(materialInput(m)); err != nil {
		return model.Material{}, err
	}
	if err := s.materials.UpsertMaterial(ctx, m); err != nil {
		return model.Material{}, err
	}
	s.log.Info(s.log.WithField(ctx, "material", m.Name), "material density updated")
	return m, nil
}

type materialInput struct {
	Name    string  `json:"name" validate:"required"`
	Density float64 `json:"density" validate:"gt=0"`
}

// mutate loads an estimate under its lock, applies fn, recalculates and
// stores the result.
func (s *Service) mutate(ctx context.Context, id, trigger string, fn func(*model.Estimate) error) (model.Estimate, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	est, err := s.estimates.Get(ctx, id)
	if err != nil {
		return model.Estimate{}, err
	}
	if err := fn(&est); err != nil {
		return model.Estimate{}, err
	}
	if err := s.recalculate(ctx, &est, trigger); err != nil {
		return model.Estimate{}, err
	}
	est.UpdatedAt = s.now().UTC()

	if err := s.estimates.Put(ctx, est); err != nil {
		return model.Estimate{}, err
	}
	s.log.Debug(s.log.WithFields(ctx, map[string]any{"estimate_id": id, "trigger": trigger}), "estimate recalculated")
	return est, nil
}

func (s *Service) recalculate(ctx context.Context, est *model.Estimate, trigger string) error {
	engine, err := s.engine(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	res := engine.RecalculateEverything(est.TableData, est.CostCalculation.ManualCosts)
	s.metrics.ObserveRecalculation(trigger, time.Since(start))

	est.TableData = res.Rows
	est.CostCalculation = res.CostCalculation

	if est.TemplateID == "" || s.templates == nil {
		return nil
	}
	tpl, err := s.templates.GetTemplate(ctx, est.TemplateID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	MarkTemplateDiff(est.TableData, tpl.TableData)
	return nil
}

func (s *Service) engine(ctx context.Context) (pricing.Engine, error) {
	if s.materials == nil {
		return pricing.NewEngine(nil), nil
	}
	densities, err := s.materials.Densities(ctx)
	if err != nil {
		return pricing.Engine{}, fmt.Errorf("load densities: %w", err)
	}
	return pricing.NewEngine(densities), nil
}

func (s *Service) stampRows(rows []model.LineItem, now time.Time) []model.LineItem {
	out := model.CloneRows(rows)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = s.newID()
		}
		if out[i].CreatedAt.IsZero() {
			out[i].CreatedAt = now
		}
		out[i].UpdatedAt = now
	}
	return out
}

func validateManual(m model.ManualCosts) error {
	return validate.CostFields(map[string]any{
		"externalInspectionCost": m.ExternalInspectionCost,
		"transportationCost":     m.TransportationCost,
		"factoryInspectionCost":  m.FactoryInspectionCost,
		"designCost":             m.DesignCost,
	}).Err("原価の入力内容に誤りがあります")
}

func validatePatch(p model.ManualCostsPatch) error {
	fields := map[string]any{}
	set := func(name string, v *float64) {
		if v != nil {
			fields[name] = *v
		}
	}
	set("externalInspectionCost", p.ExternalInspectionCost)
	set("transportationCost", p.TransportationCost)
	set("factoryInspectionCost", p.FactoryInspectionCost)
	set("designCost", p.DesignCost)
	return validate.CostFields(fields).Err("原価の入力内容に誤りがあります")
}
