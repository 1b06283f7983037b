package estimate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/model"
	"github.com/munakata1001/mitumorisyo/internal/pricing"
)

// Store persists estimates, templates and material densities in SQLite.
// Nested estimate sections are stored as JSON documents; the columns used
// for search and listing are denormalized next to them.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const estimateColumns = `id, template_id, project_info_json, table_data_json, cost_calculation_json,
	remarks_json, approval_json, created_at, updated_at`

func (s *Store) Get(ctx context.Context, id string) (model.Estimate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = ?`, id)
	est, err := scanEstimate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Estimate{}, pkgerrors.New(pkgerrors.CodeNotFound, "見積書が見つかりません")
	}
	if err != nil {
		return model.Estimate{}, fmt.Errorf("get estimate %s: %w", id, err)
	}
	return est, nil
}

// FindByNumber returns the oldest estimate carrying the given estimate number.
func (s *Store) FindByNumber(ctx context.Context, number string) (model.Estimate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+estimateColumns+` FROM estimates
		WHERE estimate_number = ? ORDER BY created_at ASC LIMIT 1`, number)
	est, err := scanEstimate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Estimate{}, pkgerrors.New(pkgerrors.CodeNotFound, "見積書が見つかりません")
	}
	if err != nil {
		return model.Estimate{}, fmt.Errorf("find estimate by number: %w", err)
	}
	return est, nil
}

// List returns estimates ordered by last update, newest first. A non-empty
// query filters by estimate number, customer, equipment name or model.
func (s *Store) List(ctx context.Context, query string) ([]model.Estimate, error) {
	sqlText := `SELECT ` + estimateColumns + ` FROM estimates`
	args := []any{}
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		sqlText += ` WHERE estimate_number LIKE ? ESCAPE '\' OR customer LIKE ? ESCAPE '\'
			OR equipment_name LIKE ? ESCAPE '\' OR model LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern, pattern)
	}
	sqlText += ` ORDER BY updated_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	defer rows.Close()

	out := []model.Estimate{}
	for rows.Next() {
		est, err := scanEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		out = append(out, est)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimates: %w", err)
	}
	return out, nil
}

// Put inserts or replaces an estimate.
func (s *Store) Put(ctx context.Context, est model.Estimate) error {
	docs, err := marshalAll(est.ProjectInfo, est.TableData, est.CostCalculation, est.RemarksData, est.ApprovalInfo)
	if err != nil {
		return fmt.Errorf("encode estimate %s: %w", est.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO estimates (
			id, estimate_number, customer, equipment_name, model, template_id,
			project_info_json, table_data_json, cost_calculation_json, remarks_json, approval_json,
			total_cost, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			estimate_number = excluded.estimate_number,
			customer = excluded.customer,
			equipment_name = excluded.equipment_name,
			model = excluded.model,
			template_id = excluded.template_id,
			project_info_json = excluded.project_info_json,
			table_data_json = excluded.table_data_json,
			cost_calculation_json = excluded.cost_calculation_json,
			remarks_json = excluded.remarks_json,
			approval_json = excluded.approval_json,
			total_cost = excluded.total_cost,
			updated_at = excluded.updated_at`,
		est.ID,
		est.ProjectInfo.EstimateNumber,
		est.ProjectInfo.Customer,
		est.ProjectInfo.EquipmentName,
		est.ProjectInfo.Model,
		est.TemplateID,
		docs[0], docs[1], docs[2], docs[3], docs[4],
		est.CostCalculation.TotalCost,
		formatTime(est.CreatedAt),
		formatTime(est.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert estimate %s: %w", est.ID, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "estimates", id, "見積書が見つかりません")
}

func (s *Store) GetTemplate(ctx context.Context, id string) (model.Template, error) {
	var (
		tpl                  model.Template
		tableJSON            string
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description, table_data_json, created_at, updated_at
		FROM templates WHERE id = ?`, id).Scan(&tpl.ID, &tpl.Name, &tpl.Description, &tableJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Template{}, pkgerrors.New(pkgerrors.CodeNotFound, "テンプレートが見つかりません")
	}
	if err != nil {
		return model.Template{}, fmt.Errorf("get template %s: %w", id, err)
	}
	if err := finishTemplate(&tpl, tableJSON, createdAt, updatedAt); err != nil {
		return model.Template{}, err
	}
	return tpl, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]model.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, table_data_json, created_at, updated_at
		FROM templates ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	out := []model.Template{}
	for rows.Next() {
		var (
			tpl                  model.Template
			tableJSON            string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &tableJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		if err := finishTemplate(&tpl, tableJSON, createdAt, updatedAt); err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return out, nil
}

func (s *Store) PutTemplate(ctx context.Context, tpl model.Template) error {
	rows := tpl.TableData
	if rows == nil {
		rows = []model.LineItem{}
	}
	tableJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode template %s: %w", tpl.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, description, table_data_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			table_data_json = excluded.table_data_json,
			updated_at = excluded.updated_at`,
		tpl.ID, tpl.Name, tpl.Description, string(tableJSON), formatTime(tpl.CreatedAt), formatTime(tpl.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert template %s: %w", tpl.ID, err)
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "templates", id, "テンプレートが見つかりません")
}

// Densities returns the material density table. Built-in densities fill in
// materials that are missing from the database.
func (s *Store) Densities(ctx context.Context) (pricing.DensityTable, error) {
	materials, err := s.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	table := pricing.DefaultDensities()
	for _, m := range materials {
		table[m.Name] = m.Density
	}
	return table, nil
}

func (s *Store) ListMaterials(ctx context.Context) ([]model.Material, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, density FROM materials ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	out := []model.Material{}
	for rows.Next() {
		var m model.Material
		if err := rows.Scan(&m.Name, &m.Density); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return out, nil
}

func (s *Store) UpsertMaterial(ctx context.Context, m model.Material) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO materials (name, density) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET density = excluded.density, updated_at = CURRENT_TIMESTAMP`,
		m.Name, m.Density,
	)
	if err != nil {
		return fmt.Errorf("upsert material %s: %w", m.Name, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEstimate(sc rowScanner) (model.Estimate, error) {
	var (
		est                              model.Estimate
		projectJSON, tableJSON, costJSON string
		remarksJSON, approvalJSON        string
		createdAt, updatedAt             string
	)
	if err := sc.Scan(&est.ID, &est.TemplateID, &projectJSON, &tableJSON, &costJSON,
		&remarksJSON, &approvalJSON, &createdAt, &updatedAt); err != nil {
		return model.Estimate{}, err
	}

	docs := []struct {
		raw  string
		dest any
	}{
		{projectJSON, &est.ProjectInfo},
		{tableJSON, &est.TableData},
		{costJSON, &est.CostCalculation},
		{remarksJSON, &est.RemarksData},
		{approvalJSON, &est.ApprovalInfo},
	}
	for _, doc := range docs {
		if err := json.Unmarshal([]byte(doc.raw), doc.dest); err != nil {
			return model.Estimate{}, fmt.Errorf("decode estimate %s: %w", est.ID, err)
		}
	}
	if est.TableData == nil {
		est.TableData = []model.LineItem{}
	}

	var err error
	if est.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Estimate{}, err
	}
	if est.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Estimate{}, err
	}
	return est, nil
}

func finishTemplate(tpl *model.Template, tableJSON, createdAt, updatedAt string) error {
	if err := json.Unmarshal([]byte(tableJSON), &tpl.TableData); err != nil {
		return fmt.Errorf("decode template %s: %w", tpl.ID, err)
	}
	if tpl.TableData == nil {
		tpl.TableData = []model.LineItem{}
	}
	var err error
	if tpl.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	if tpl.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return err
	}
	return nil
}

func marshalAll(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		if rows, ok := v.([]model.LineItem); ok && rows == nil {
			v = []model.LineItem{}
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = string(b)
	}
	return out, nil
}

func deleteByID(ctx context.Context, db *sql.DB, table, id, notFound string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Fixed-width so stored timestamps sort lexicographically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
