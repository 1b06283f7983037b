package validate

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

const (
	// MaxFileSize is the upload ceiling per file (10 MiB).
	MaxFileSize = 10 << 20
	// MaxFiles is the default upload count ceiling.
	MaxFiles = 3

	// Row input ceilings: dimensions in mm, unit price in yen. Within them
	// every derived weight and price stays finite.
	MaxDimension = 1e6
	MaxQuantity  = 1e9
	MaxUnitPrice = 1e12
)

// AcceptedExtensions lists the uploadable file types.
var AcceptedExtensions = []string{".xlsx", ".xlsm", ".xls", ".pdf"}

// FileInfo describes an uploaded file.
type FileInfo struct {
	Name string
	Size int64
}

// Extension returns the lower-cased extension of name.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// File checks the extension and size of one upload.
func File(f FileInfo) Result {
	var res Result
	if !slices.Contains(AcceptedExtensions, Extension(f.Name)) {
		res.add(f.Name, fmt.Sprintf("%s: 対応していないファイル形式です（対応形式: %s）", f.Name, strings.Join(AcceptedExtensions, ", ")))
	}
	if f.Size > MaxFileSize {
		res.add(f.Name, fmt.Sprintf("%s: ファイルサイズが大きすぎます（最大%dMB）", f.Name, MaxFileSize>>20))
	}
	return res
}

// Files checks the upload count, duplicates by (name, size) and every file.
// A maxFiles <= 0 selects MaxFiles.
func Files(files []FileInfo, maxFiles int) Result {
	if maxFiles <= 0 {
		maxFiles = MaxFiles
	}

	var res Result
	if len(files) > maxFiles {
		res.add("files", fmt.Sprintf("ファイル数が上限（%d個）を超えています", maxFiles))
	}

	seen := make(map[FileInfo]struct{}, len(files))
	for _, f := range files {
		if _, dup := seen[f]; dup {
			res.add("files", "重複したファイルが検出されました")
			break
		}
		seen[f] = struct{}{}
	}

	for _, f := range files {
		res.merge(File(f))
	}
	return res
}

// Rows checks the hand-entered numbers of every row.
func Rows(rows []model.LineItem) Result {
	var res Result
	for i, row := range rows {
		prefix := fmt.Sprintf("tableData[%d]", i)
		bounded(&res, prefix+".quantity", "数量", row.Quantity, MaxQuantity)
		bounded(&res, prefix+".unitPrice", "単価", row.UnitPrice, MaxUnitPrice)

		dims := []struct {
			name  string
			label string
			value *float64
		}{
			{"length", "長さ", row.Dimensions.Length},
			{"width", "幅", row.Dimensions.Width},
			{"height", "高さ", row.Dimensions.Height},
			{"thickness", "厚さ", row.Dimensions.Thickness},
			{"diameter", "直径", row.Dimensions.Diameter},
			{"radius", "半径", row.Dimensions.Radius},
		}
		for _, d := range dims {
			if d.value != nil {
				bounded(&res, prefix+".dimensions."+d.name, d.label, *d.value, MaxDimension)
			}
		}
	}
	return res
}

func bounded(res *Result, field, label string, v, limit float64) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		res.add(field, fmt.Sprintf("%sは数値である必要があります", label))
	case v < 0:
		res.add(field, fmt.Sprintf("%sは0以上である必要があります", label))
	case v > limit:
		res.add(field, fmt.Sprintf("%sは%s以下である必要があります", label, strconv.FormatFloat(limit, 'f', -1, 64)))
	}
}
