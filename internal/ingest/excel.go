package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

// Column positions (0-based) of the import layout. Column 5 is unused.
const (
	colModelNumber = iota
	colName
	colPartType
	colMaterial
	_
	colQuantity
	colWeight
	colUnitPrice
	colPrice
	colIsAuto
	colLength
	colWidth
	colHeight
	colThickness
	colDiameter
	colRadius
)

// ParseExcel reads rows from the first sheet of a workbook. Row 1 is the
// header; rows with an empty first cell are skipped.
func ParseExcel(data []byte) ([]model.LineItem, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}

	now := time.Now().UTC()
	rows := make([]model.LineItem, 0, len(records))
	for i, record := range records {
		if i == 0 || strings.TrimSpace(cell(record, colModelNumber)) == "" {
			continue
		}
		rows = append(rows, excelRow(record, now))
	}
	return rows, nil
}

func excelRow(record []string, now time.Time) model.LineItem {
	row := newRow(now)
	row.ModelNumber = strings.TrimSpace(cell(record, colModelNumber))
	row.Name = strings.TrimSpace(cell(record, colName))
	row.PartType = strings.TrimSpace(cell(record, colPartType))
	row.Material = strings.TrimSpace(cell(record, colMaterial))

	if v, ok := parseNumber(cell(record, colQuantity)); ok && v != 0 {
		row.Quantity = v
	}
	row.Weight, _ = parseNumber(cell(record, colWeight))
	row.UnitPrice, _ = parseNumber(cell(record, colUnitPrice))
	row.Price, _ = parseNumber(cell(record, colPrice))
	row.IsAuto = parseBool(cell(record, colIsAuto))

	row.Dimensions = model.DimensionData{
		Length:    dimension(record, colLength),
		Width:     dimension(record, colWidth),
		Height:    dimension(record, colHeight),
		Thickness: dimension(record, colThickness),
		Diameter:  dimension(record, colDiameter),
		Radius:    dimension(record, colRadius),
	}
	finishRow(&row)
	return row
}

// dimension returns nil for empty, unparseable and zero cells.
func dimension(record []string, col int) *float64 {
	v, ok := parseNumber(cell(record, col))
	if !ok || v == 0 {
		return nil
	}
	return model.Float(v)
}

func cell(record []string, col int) string {
	if col < len(record) {
		return record[col]
	}
	return ""
}
