package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

// Format names accepted by the export endpoints.
const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
)

// ContentType returns the MIME type and file extension of a format.
func ContentType(format string) (mime, ext string, ok bool) {
	switch format {
	case FormatPDF:
		return "application/pdf", "pdf", true
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", true
	default:
		return "", "", false
	}
}

// FileName builds the download name 見積書_<number>_<YYYYMMDD>.<ext>.
func FileName(est model.Estimate, ext string, now time.Time) string {
	number := strings.TrimSpace(est.ProjectInfo.EstimateNumber)
	if number == "" {
		number = "draft"
	}
	number = strings.NewReplacer("/", "-", "\\", "-", " ", "_").Replace(number)
	return fmt.Sprintf("見積書_%s_%s.%s", number, now.Format("20060102"), ext)
}

// FormatYen rounds to whole yen and groups thousands, e.g. ¥1,234,568.
func FormatYen(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "¥" + groupThousands(d.StringFixed(0))
}

// FormatNumber renders v with the given number of decimals and grouped
// thousands.
func FormatNumber(v float64, places int32) string {
	d := decimal.NewFromFloat(v).Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(places)
	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := sign + groupThousands(intPart)
	if hasFrac {
		out += "." + frac
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

type costLine struct {
	label   string
	labelEN string
	value   float64
}

func costLines(c model.CostSummary) []costLine {
	return []costLine{
		{"材料費", "Material", c.MaterialCost},
		{"加工費", "Processing", c.ProcessingCost},
		{"塗装費", "Painting", c.PaintingCost},
		{"外注検査費", "External inspection", c.ExternalInspectionCost},
		{"輸送費", "Transportation", c.TransportationCost},
		{"工場検査費", "Factory inspection", c.FactoryInspectionCost},
		{"設計費", "Design", c.DesignCost},
		{"直接原価", "Direct cost", c.DirectCost},
		{"製造原価", "Manufacturing cost", c.ManufacturingCost},
		{"総原価", "Total cost", c.TotalCost},
	}
}

type noteGroup struct {
	label   string
	labelEN string
	notes   []string
}

func noteGroups(r model.RemarksData) []noteGroup {
	return []noteGroup{
		{"備考", "Remark", r.Remarks},
		{"材料費補足", "Material note", r.MaterialCostNotes},
		{"内作加工費補足", "Internal processing note", r.InternalProcessingNotes},
		{"外注加工等補足", "External processing note", r.ExternalProcessingNotes},
	}
}

func formatQuantity(v float64) string {
	return FormatNumber(v, 0)
}
