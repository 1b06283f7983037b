package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

// ErrNoTable is returned when no header line is found in a PDF.
var ErrNoTable = errors.New("PDFファイルから表データを検出できませんでした")

// ParsePDF extracts the plain text of a PDF and reads its cost table.
func ParsePDF(data []byte) ([]model.LineItem, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	return ParseText(string(b))
}

// ParseText reads whitespace-separated rows following the first line that
// mentions 型式 or 名称. Columns are modelNumber, name, partType, material,
// quantity, weight, unitPrice and price; lines with fewer than three columns
// are skipped.
func ParseText(text string) ([]model.LineItem, error) {
	lines := strings.Split(text, "\n")
	header := -1
	for i, line := range lines {
		if strings.Contains(line, "型式") || strings.Contains(line, "名称") {
			header = i
			break
		}
	}
	if header == -1 {
		return nil, ErrNoTable
	}

	now := time.Now().UTC()
	rows := make([]model.LineItem, 0)
	for _, line := range lines[header+1:] {
		cols := strings.Fields(line)
		if len(cols) < 3 {
			continue
		}

		row := newRow(now)
		row.ModelNumber = cols[0]
		row.Name = cols[1]
		row.PartType = cols[2]
		row.Material = field(cols, 3)
		if v, ok := parseNumber(field(cols, 4)); ok && v != 0 {
			row.Quantity = v
		}
		row.Weight, _ = parseNumber(field(cols, 5))
		row.UnitPrice, _ = parseNumber(field(cols, 6))
		row.Price, _ = parseNumber(field(cols, 7))
		finishRow(&row)
		rows = append(rows, row)
	}
	return rows, nil
}

func field(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}
