package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin   = 10.0
	minColWidth  = 14.0
	landscapeMin = 6
)

// PDFExporter renders a Dataset as a single table. Tables with six or more
// columns are laid out in landscape.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the document with an optional title and the dataset caption.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	orientation := "P"
	if len(data.Headers) >= landscapeMin {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pageMargin, 15, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	}
	if data.Caption != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, tr(data.Caption), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pageWidth, _ := pdf.GetPageSize()
	widths := columnWidths(data, pageWidth-2*pageMargin)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 7, tr(row[h]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths splits total across columns in proportion to the longest
// cell of each, with a floor of minColWidth.
func columnWidths(data Dataset, total float64) []float64 {
	weights := make([]float64, len(data.Headers))
	sum := 0.0
	for i, h := range data.Headers {
		longest := len(h)
		for _, row := range data.Rows {
			if n := len(row[h]); n > longest {
				longest = n
			}
		}
		weights[i] = float64(longest)
		sum += weights[i]
	}

	widths := make([]float64, len(weights))
	fixed, flexible := 0.0, 0.0
	for i, w := range weights {
		widths[i] = total * w / sum
		if widths[i] < minColWidth {
			widths[i] = minColWidth
			fixed += minColWidth
		} else {
			flexible += widths[i]
		}
	}
	if flexible > 0 {
		scale := (total - fixed) / flexible
		for i := range widths {
			if widths[i] > minColWidth {
				widths[i] *= scale
			}
		}
	}
	return widths
}
