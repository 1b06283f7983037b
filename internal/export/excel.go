package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

// Sheet names of the exported workbook.
const (
	SheetProjectInfo = "基本情報"
	SheetDetail      = "原価明細"
	SheetCost        = "原価計算"
	SheetRemarks     = "備考・補足"
	SheetApproval    = "査印情報"
)

type excelStyles struct {
	header   int
	integer  int
	decimals int
}

// Excel renders an estimate as an xlsx workbook.
func Excel(est model.Estimate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetProjectInfo); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	for _, name := range []string{SheetDetail, SheetCost, SheetRemarks, SheetApproval} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	styles, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}

	steps := []func(*excelize.File, model.Estimate, excelStyles) error{
		writeProjectInfoSheet,
		writeDetailSheet,
		writeCostSheet,
		writeRemarksSheet,
		writeApprovalSheet,
	}
	for _, step := range steps {
		if err := step(f, est, styles); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return excelStyles{}, fmt.Errorf("create header style: %w", err)
	}
	intFmt := "#,##0"
	integer, err := f.NewStyle(&excelize.Style{CustomNumFmt: &intFmt, Border: thinBorders()})
	if err != nil {
		return excelStyles{}, fmt.Errorf("create integer style: %w", err)
	}
	decFmt := "#,##0.00"
	decimals, err := f.NewStyle(&excelize.Style{CustomNumFmt: &decFmt, Border: thinBorders()})
	if err != nil {
		return excelStyles{}, fmt.Errorf("create decimal style: %w", err)
	}
	return excelStyles{header: header, integer: integer, decimals: decimals}, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, widths []float64, style int) error {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s!%s: %w", sheet, col, err)
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeKeyValues(f *excelize.File, sheet string, pairs [][2]string) error {
	for i, p := range pairs {
		row := []any{p[0], sanitizeExcelCell(p[1])}
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func writeProjectInfoSheet(f *excelize.File, est model.Estimate, s excelStyles) error {
	if err := writeHeader(f, SheetProjectInfo, []string{"項目", "値"}, []float64{20, 30}, s.header); err != nil {
		return err
	}
	p := est.ProjectInfo
	return writeKeyValues(f, SheetProjectInfo, [][2]string{
		{"見積番号", p.EstimateNumber},
		{"客先", p.Customer},
		{"向先", p.DeliveryDestination},
		{"機器名", p.EquipmentName},
		{"製作数量", fmt.Sprintf("%s %s", formatQuantity(p.ProductionQuantity), p.ProductionUnit)},
		{"納期", p.DeliveryDate},
		{"機種", p.Model},
		{"機器形状", p.EquipmentShape},
		{"重量", FormatNumber(p.Weight, 2) + " kg"},
	})
}

func writeDetailSheet(f *excelize.File, est model.Estimate, s excelStyles) error {
	headers := []string{"型式", "名称", "Part Type", "材質", "数量", "重量", "単価", "価格", "自動"}
	widths := []float64{15, 25, 15, 15, 10, 12, 15, 15, 10}
	if err := writeHeader(f, SheetDetail, headers, widths, s.header); err != nil {
		return err
	}

	for i, r := range est.TableData {
		auto := ""
		if r.IsAuto {
			auto = "✓"
		}
		row := []any{
			sanitizeExcelCell(r.ModelNumber),
			sanitizeExcelCell(r.Name),
			sanitizeExcelCell(r.PartType),
			sanitizeExcelCell(r.Material),
			r.Quantity,
			r.Weight,
			r.UnitPrice,
			r.Price,
			auto,
		}
		n := i + 2
		axis, _ := excelize.CoordinatesToCellName(1, n)
		if err := f.SetSheetRow(SheetDetail, axis, &row); err != nil {
			return fmt.Errorf("write detail row %d: %w", n, err)
		}
		if err := f.SetCellStyle(SheetDetail, fmt.Sprintf("E%d", n), fmt.Sprintf("E%d", n), s.integer); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetDetail, fmt.Sprintf("F%d", n), fmt.Sprintf("F%d", n), s.decimals); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetDetail, fmt.Sprintf("G%d", n), fmt.Sprintf("H%d", n), s.integer); err != nil {
			return err
		}
	}
	return nil
}

func writeCostSheet(f *excelize.File, est model.Estimate, s excelStyles) error {
	if err := writeHeader(f, SheetCost, []string{"項目", "金額"}, []float64{25, 20}, s.header); err != nil {
		return err
	}
	lines := costLines(est.CostCalculation)
	for i, line := range lines {
		n := i + 2
		row := []any{line.label, line.value}
		if err := f.SetSheetRow(SheetCost, fmt.Sprintf("A%d", n), &row); err != nil {
			return fmt.Errorf("write cost row %d: %w", n, err)
		}
		if err := f.SetCellStyle(SheetCost, fmt.Sprintf("B%d", n), fmt.Sprintf("B%d", n), s.integer); err != nil {
			return err
		}
	}

	n := len(lines) + 2
	row := []any{"塗装面積 (m²)", est.CostCalculation.PaintingArea}
	if err := f.SetSheetRow(SheetCost, fmt.Sprintf("A%d", n), &row); err != nil {
		return fmt.Errorf("write painting area: %w", err)
	}
	return f.SetCellStyle(SheetCost, fmt.Sprintf("B%d", n), fmt.Sprintf("B%d", n), s.decimals)
}

func writeRemarksSheet(f *excelize.File, est model.Estimate, s excelStyles) error {
	if err := writeHeader(f, SheetRemarks, []string{"カテゴリ", "内容"}, []float64{30, 50}, s.header); err != nil {
		return err
	}
	var pairs [][2]string
	for _, g := range noteGroups(est.RemarksData) {
		for i, note := range g.notes {
			if note == "" {
				continue
			}
			pairs = append(pairs, [2]string{fmt.Sprintf("%s%d", g.label, i+1), note})
		}
	}
	return writeKeyValues(f, SheetRemarks, pairs)
}

func writeApprovalSheet(f *excelize.File, est model.Estimate, s excelStyles) error {
	if err := writeHeader(f, SheetApproval, []string{"項目", "値"}, []float64{20, 30}, s.header); err != nil {
		return err
	}
	a := est.ApprovalInfo
	return writeKeyValues(f, SheetApproval, [][2]string{
		{"査定者", a.Assessor},
		{"査定日", a.AssessmentDate},
		{"承認者", a.Approver},
		{"承認日", a.ApprovalDate},
		{"最終承認者", a.FinalApprover},
		{"査印1", a.Seal1},
		{"査印2", a.Seal2},
		{"査印3", a.Seal3},
		{"査印4", a.Seal4},
		{"担当者", a.PersonInCharge},
	})
}

// sanitizeExcelCell prefixes values Excel would read as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#CCCCCC", Style: 1},
		{Type: "top", Color: "#CCCCCC", Style: 1},
		{Type: "bottom", Color: "#CCCCCC", Style: 1},
		{Type: "right", Color: "#CCCCCC", Style: 1},
	}
}
