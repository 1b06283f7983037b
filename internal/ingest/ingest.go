package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
	"github.com/munakata1001/mitumorisyo/internal/model"
	"github.com/munakata1001/mitumorisyo/internal/validate"
)

// File is an uploaded document held in memory.
type File struct {
	Name string
	Data []byte
}

// Kind returns "pdf" or "excel" from the file extension.
func (f File) Kind() string {
	if validate.Extension(f.Name) == ".pdf" {
		return "pdf"
	}
	return "excel"
}

// Parse extracts candidate rows from one file.
func Parse(f File) ([]model.LineItem, error) {
	var (
		rows []model.LineItem
		err  error
	)
	if f.Kind() == "pdf" {
		rows, err = ParsePDF(f.Data)
	} else {
		rows, err = ParseExcel(f.Data)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeParse, err, fmt.Sprintf("ファイル %s の解析に失敗しました", f.Name))
	}
	return rows, nil
}

// ParseAll parses files concurrently. Results keep the input order; the
// first failure cancels the remaining work. onParsed, when non-nil, is
// called once per finished file, possibly from several goroutines.
func ParseAll(ctx context.Context, files []File, onParsed func(f File, err error)) ([][]model.LineItem, error) {
	results := make([][]model.LineItem, len(files))
	g, ctx := errgroup.WithContext(ctx)

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := Parse(f)
			if onParsed != nil {
				onParsed(f, err)
			}
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// newRow builds a row with the provenance defaults shared by every parser.
func newRow(now time.Time) model.LineItem {
	return model.LineItem{
		ID:          uuid.NewString(),
		Quantity:    1,
		IsAutoInput: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// finishRow fills in a missing price from unit price and quantity.
func finishRow(row *model.LineItem) {
	row.Dimensions.PartType = row.PartType
	if row.Price == 0 && row.UnitPrice > 0 && row.Quantity > 0 {
		row.Price = row.UnitPrice * row.Quantity
	}
}

// parseNumber reads a spreadsheet-formatted number such as "1,200" or "¥500".
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(",", "", "¥", "", "￥", "", "円", "").Replace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseBool(raw string) bool {
	s := strings.TrimSpace(raw)
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	switch strings.ToLower(s) {
	case "○", "◯", "yes", "y", "はい", "自動":
		return true
	}
	return false
}
