package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

const customFontFamily = "estimate-jp"

// PDFOptions configures PDF rendering. Without a FontPath the built-in
// Latin fonts are used and labels are printed in English.
type PDFOptions struct {
	FontPath string
}

type pdfLabels struct {
	title, detail, cost, remarks                  string
	estimateNumber, customer, destination, device string
	quantity, delivery, model, shape, weight      string
	columns                                       []string
	pageNumber                                    string
	localized                                     bool
}

var (
	labelsJA = pdfLabels{
		title: "見積書", detail: "原価明細", cost: "原価計算", remarks: "備考・補足",
		estimateNumber: "見積番号", customer: "客先", destination: "向先", device: "機器名",
		quantity: "製作数量", delivery: "納期", model: "機種", shape: "機器形状", weight: "重量",
		columns:    []string{"型式", "名称", "Part Type", "材質", "数量", "重量", "単価", "価格"},
		pageNumber: "{current} / {total}",
		localized:  true,
	}
	labelsEN = pdfLabels{
		title: "Estimate", detail: "Cost Detail", cost: "Cost Summary", remarks: "Remarks",
		estimateNumber: "Estimate No.", customer: "Customer", destination: "Destination", device: "Equipment",
		quantity: "Quantity", delivery: "Delivery", model: "Model", shape: "Shape", weight: "Weight",
		columns:    []string{"Model No.", "Name", "Part Type", "Material", "Qty", "Weight", "Unit Price", "Price"},
		pageNumber: "Page {current} of {total}",
	}
)

// PDF renders an estimate as an A4 PDF document.
func PDF(est model.Estimate, opts PDFOptions) ([]byte, error) {
	builder := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10)

	labels := labelsEN
	if opts.FontPath != "" {
		fonts, err := repository.New().
			AddUTF8Font(customFontFamily, fontstyle.Normal, opts.FontPath).
			AddUTF8Font(customFontFamily, fontstyle.Bold, opts.FontPath).
			Load()
		if err != nil {
			return nil, fmt.Errorf("load pdf font %s: %w", opts.FontPath, err)
		}
		builder = builder.
			WithCustomFonts(fonts).
			WithDefaultFont(&props.Font{Family: customFontFamily, Size: 9})
		labels = labelsJA
	}
	builder = builder.WithPageNumber(props.PageNumber{
		Pattern: labels.pageNumber,
		Place:   props.RightBottom,
		Size:    7,
		Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
	})

	m := maroto.New(builder.Build())
	addPDFHeader(m, est, labels)
	addPDFDetail(m, est.TableData, labels)
	addPDFCost(m, est.CostCalculation, labels)
	addPDFRemarks(m, est.RemarksData, labels)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func sectionTitle(m core.Maroto, title string) {
	m.AddRows(row.New(4))
	m.AddRows(row.New(8).Add(
		col.New(12).Add(text.New(title, props.Text{Size: 11, Style: fontstyle.Bold})),
	))
}

func addPDFHeader(m core.Maroto, est model.Estimate, l pdfLabels) {
	m.AddRows(row.New(14).Add(
		col.New(12).Add(text.New(l.title, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Center})),
	))

	p := est.ProjectInfo
	pairs := [][2]string{
		{l.estimateNumber, p.EstimateNumber},
		{l.customer, p.Customer},
		{l.destination, p.DeliveryDestination},
		{l.device, p.EquipmentName},
		{l.quantity, formatQuantity(p.ProductionQuantity) + " " + p.ProductionUnit},
		{l.delivery, p.DeliveryDate},
		{l.model, p.Model},
		{l.shape, p.EquipmentShape},
		{l.weight, FormatNumber(p.Weight, 2) + " kg"},
	}
	if !l.localized {
		// Production units are Japanese characters the Latin fonts cannot print.
		pairs[4][1] = formatQuantity(p.ProductionQuantity)
	}

	labelText := props.Text{Size: 9, Style: fontstyle.Bold}
	valueText := props.Text{Size: 9}
	for _, pair := range pairs {
		m.AddRows(row.New(6).Add(
			col.New(3).Add(text.New(pair[0], labelText)),
			col.New(9).Add(text.New(pair[1], valueText)),
		))
	}
}

func addPDFDetail(m core.Maroto, rows []model.LineItem, l pdfLabels) {
	sectionTitle(m, l.detail)

	widths := []int{2, 2, 1, 1, 1, 1, 2, 2}
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 224, Green: 224, Blue: 224}}
	headerText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}

	header := make([]core.Col, len(widths))
	for i, w := range widths {
		header[i] = col.New(w).Add(text.New(l.columns[i], headerText)).WithStyle(headerCell)
	}
	m.AddRows(row.New(7).Add(header...))

	left := props.Text{Size: 8}
	right := props.Text{Size: 8, Align: align.Right}
	for _, r := range rows {
		m.AddRows(row.New(6).Add(
			col.New(2).Add(text.New(r.ModelNumber, left)),
			col.New(2).Add(text.New(r.Name, left)),
			col.New(1).Add(text.New(r.PartType, left)),
			col.New(1).Add(text.New(r.Material, left)),
			col.New(1).Add(text.New(formatQuantity(r.Quantity), right)),
			col.New(1).Add(text.New(FormatNumber(r.Weight, 2), right)),
			col.New(2).Add(text.New(FormatNumber(r.UnitPrice, 0), right)),
			col.New(2).Add(text.New(FormatNumber(r.Price, 0), right)),
		))
	}
}

func addPDFCost(m core.Maroto, c model.CostSummary, l pdfLabels) {
	sectionTitle(m, l.cost)

	labelText := props.Text{Size: 9, Align: align.Right}
	valueText := props.Text{Size: 9, Align: align.Right}
	totalCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}

	for _, line := range costLines(c) {
		label := line.label
		if !l.localized {
			label = line.labelEN
		}
		r := row.New(6).Add(
			col.New(8).Add(text.New(label, labelText)),
			col.New(4).Add(text.New(FormatNumber(line.value, 0), valueText)),
		)
		if line.label == "総原価" {
			r = row.New(7).Add(
				col.New(8).Add(text.New(label, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})).WithStyle(totalCell),
				col.New(4).Add(text.New(FormatNumber(line.value, 0), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})).WithStyle(totalCell),
			)
		}
		m.AddRows(r)
	}
}

func addPDFRemarks(m core.Maroto, r model.RemarksData, l pdfLabels) {
	var lines [][2]string
	for _, g := range noteGroups(r) {
		label := g.label
		if !l.localized {
			label = g.labelEN
		}
		for i, note := range g.notes {
			if note != "" {
				lines = append(lines, [2]string{fmt.Sprintf("%s%d", label, i+1), note})
			}
		}
	}
	if len(lines) == 0 {
		return
	}

	sectionTitle(m, l.remarks)
	for _, line := range lines {
		m.AddRows(row.New(6).Add(
			col.New(3).Add(text.New(line[0], props.Text{Size: 8, Style: fontstyle.Bold})),
			col.New(9).Add(text.New(line[1], props.Text{Size: 8})),
		))
	}
}
